package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

func newTestSettingsService(env *testEnv) usecase.SettingsUsecase {
	return NewSettingsService(SettingsServiceParams{
		TxManager: env.txManager,
		UserRepo:  env.users,
		Publisher: env.publisher,
		Logger:    env.logger,
	})
}

func TestSettingsService_Get(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestSettingsService(env)
	ctx := context.Background()

	creator, err := srv.Get(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Designs", creator.Name)
	assert.Equal(t, entity.CurrencyUSD, creator.DefaultCurrency)

	_, err = srv.Get(ctx, "student-01")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = srv.Get(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestSettingsService_Update(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestSettingsService(env)
	ctx := context.Background()

	name := "  Alex Studio "
	currency := entity.CurrencyNGN
	updated, err := srv.Update(ctx, seedCreatorID, usecase.SettingsUpdate{
		Name:             &name,
		DefaultCurrency:  &currency,
		StoreBranding:    &entity.StoreBranding{LogoURL: "https://example.com/logo.png"},
		AffiliateProgram: &entity.AffiliateProgram{Enabled: true, CommissionRate: 45},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alex Studio", updated.Name)
	assert.Equal(t, entity.CurrencyNGN, updated.DefaultCurrency)
	assert.Equal(t, entity.DefaultPrimaryColor, updated.StoreBranding.PrimaryColor)
	assert.Equal(t, float64(45), updated.CommissionRate())
	require.NotNil(t, updated.PayoutDetails, "untouched fields are kept")
	assert.Equal(t, "Creative Bank", updated.PayoutDetails.BankName)

	stored, err := env.users.FindByID(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Studio", stored.Name)

	assert.Len(t, env.publisher.events(service.EventSettingsUpdated), 1)
}

func TestSettingsService_Update_Validation(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestSettingsService(env)
	ctx := context.Background()

	blank := " "
	currency := entity.Currency("EUR")
	_, err := srv.Update(ctx, seedCreatorID, usecase.SettingsUpdate{
		Name:             &blank,
		DefaultCurrency:  &currency,
		AffiliateProgram: &entity.AffiliateProgram{Enabled: true, CommissionRate: 120},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	fields := domainerrors.FieldErrors(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "defaultCurrency")
	assert.Contains(t, fields, "affiliateProgram.commissionRate")

	stored, err := env.users.FindByID(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Designs", stored.Name)
	assert.Empty(t, env.publisher.events(service.EventSettingsUpdated))
}
