package impl

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/infra/qrcode"
	"coursecraft/internal/usecase"
)

func newTestAffiliateService(env *testEnv) usecase.AffiliateUsecase {
	return NewAffiliateService(AffiliateServiceParams{
		UserRepo:      env.users,
		ProductRepo:   env.products,
		AffiliateRepo: env.affiliates,
		QRService:     qrcode.NewQRCodeService(env.cfg),
		Publisher:     env.publisher,
		Config:        env.cfg,
		Logger:        env.logger,
	})
}

func disableProgram(t *testing.T, env *testEnv) {
	t.Helper()

	_, err := newTestSettingsService(env).Update(context.Background(), seedCreatorID, usecase.SettingsUpdate{
		AffiliateProgram: &entity.AffiliateProgram{Enabled: false, CommissionRate: 30},
	})
	require.NoError(t, err)
}

func TestAffiliateService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)

	dash, err := srv.Dashboard(context.Background(), seedAffiliateID)
	require.NoError(t, err)

	assert.Equal(t, seedReferral, dash.AffiliateID)
	assert.Equal(t, 6, dash.TotalClicks)
	assert.Equal(t, 3, dash.TotalSales)
	assert.InDelta(t, 15000, dash.Earnings[entity.CurrencyNGN], 0.001)
	assert.InDelta(t, 90, dash.Earnings[entity.CurrencyUSD], 0.001)

	require.NotEmpty(t, dash.RecentActivity)
	assert.Equal(t, "Ultimate Figma Masterclass", dash.RecentActivity[0].ProductName)

	require.Len(t, dash.Programs, 1)
	assert.Equal(t, seedCreatorID, dash.Programs[0].CreatorID)
	assert.Equal(t, float64(30), dash.Programs[0].CommissionRate)
}

func TestAffiliateService_Dashboard_RequiresAffiliate(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)

	_, err := srv.Dashboard(context.Background(), seedCreatorID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestAffiliateService_CreateLink(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)
	ctx := context.Background()

	store, err := srv.CreateLink(ctx, seedAffiliateID, seedCreatorID, "")
	require.NoError(t, err)
	assert.Equal(t, "https://course-craft.com/store/creator-01?ref=sam-promo", store.URL)

	product, err := srv.CreateLink(ctx, seedAffiliateID, seedCreatorID, "1")
	require.NoError(t, err)
	assert.Equal(t, "https://course-craft.com/store/creator-01/products/1?ref=sam-promo", product.URL)

	_, err = srv.CreateLink(ctx, seedAffiliateID, seedCreatorID, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)

	disableProgram(t, env)
	_, err = srv.CreateLink(ctx, seedAffiliateID, seedCreatorID, "")
	assert.ErrorIs(t, err, domainerrors.ErrAffiliateProgramDisabled)
}

func TestAffiliateService_LinkQRCode(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)

	png, err := srv.LinkQRCode(context.Background(), seedAffiliateID, seedCreatorID, "2")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestAffiliateService_TrackClick(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)
	ctx := context.Background()

	require.NoError(t, srv.TrackClick(ctx, seedReferral, seedCreatorID, "2"))

	clicks, err := env.affiliates.ListClicks(ctx, seedReferral)
	require.NoError(t, err)
	assert.Len(t, clicks, 7)

	events := env.publisher.events(service.EventAffiliateClick)
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].ProductID)
	assert.Equal(t, seedReferral, events[0].Attributes["affiliate_id"])
}

func TestAffiliateService_TrackClick_Ignored(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestAffiliateService(env)
	ctx := context.Background()

	require.NoError(t, srv.TrackClick(ctx, "", seedCreatorID, ""))
	require.NoError(t, srv.TrackClick(ctx, "nobody", seedCreatorID, ""))

	disableProgram(t, env)
	require.NoError(t, srv.TrackClick(ctx, seedReferral, seedCreatorID, ""))

	clicks, err := env.affiliates.ListClicks(ctx, seedReferral)
	require.NoError(t, err)
	assert.Len(t, clicks, 6)
	assert.Empty(t, env.publisher.events(service.EventAffiliateClick))
}
