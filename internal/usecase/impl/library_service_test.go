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
	"coursecraft/internal/infra/imaging"
	"coursecraft/internal/usecase"
)

func newTestLibraryService(t *testing.T, env *testEnv) usecase.LibraryUsecase {
	t.Helper()

	certificates, err := imaging.NewCertificateRenderer()
	require.NoError(t, err)

	return NewLibraryService(LibraryServiceParams{
		TxManager:    env.txManager,
		UserRepo:     env.users,
		ProductRepo:  env.products,
		SaleRepo:     env.sales,
		ProgressRepo: env.progress,
		Certificates: certificates,
		Publisher:    env.publisher,
		Logger:       env.logger,
	})
}

func TestLibraryService_List(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	_, err := srv.CompleteLesson(ctx, "student-01", "1", "l1")
	require.NoError(t, err)

	items, err := srv.List(ctx, "student-01")
	require.NoError(t, err)
	require.Len(t, items, 2, "deleted products are hidden")

	progress := make(map[string]int, len(items))
	for _, it := range items {
		progress[it.Product.ID] = it.Progress
	}
	assert.Equal(t, 50, progress["1"])
	assert.Equal(t, 0, progress["3"])
}

func TestLibraryService_Course(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	view, err := srv.Course(ctx, "student-01", "1")
	require.NoError(t, err)
	assert.Equal(t, "l1", view.CurrentLessonID)
	assert.Empty(t, view.Completed)
	assert.False(t, view.CertificateUnlocked)
	assert.True(t, view.HasReviewed)

	owner, err := srv.Course(ctx, seedCreatorID, "2")
	require.NoError(t, err, "creators can open their own products")
	assert.Empty(t, owner.Lessons)

	_, err = srv.Course(ctx, "student-01", "2")
	assert.ErrorIs(t, err, domainerrors.ErrNotPurchased)

	_, err = srv.Course(ctx, "student-01", "4")
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestLibraryService_CompleteLesson(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	view, err := srv.CompleteLesson(ctx, "student-01", "1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "l2", view.CurrentLessonID)
	assert.Equal(t, []string{"l1"}, view.Completed)
	assert.Equal(t, 50, view.Progress)

	view, err = srv.CompleteLesson(ctx, "student-01", "1", "l2")
	require.NoError(t, err)
	assert.Equal(t, "l2", view.CurrentLessonID, "the last lesson stays current")
	assert.Equal(t, 100, view.Progress)
	assert.True(t, view.CertificateUnlocked)

	_, err = srv.CompleteLesson(ctx, "student-01", "1", "l9")
	assert.ErrorIs(t, err, domainerrors.ErrLessonNotFound)
}

func TestLibraryService_Certificate(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	_, err := srv.Certificate(ctx, "student-01", "1")
	require.ErrorIs(t, err, domainerrors.ErrCertificateLocked)

	for _, id := range []string{"l1", "l2"} {
		_, err = srv.CompleteLesson(ctx, "student-01", "1", id)
		require.NoError(t, err)
	}

	png, err := srv.Certificate(ctx, "student-01", "1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestLibraryService_Certificate_Membership(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	club := env.addProduct(t, &entity.Product{
		ID:                 "club",
		CreatorID:          seedCreatorID,
		Name:               "Design Club",
		Price:              10,
		Content:            entity.MembershipContent{},
		CertificateEnabled: true,
	})
	env.buy(t, "student-02", club)

	view, err := srv.Course(ctx, "student-02", club.ID)
	require.NoError(t, err)
	assert.True(t, view.CertificateUnlocked)

	_, err = srv.Certificate(ctx, "student-02", club.ID)
	assert.NoError(t, err)
}

func TestLibraryService_AddReview(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	review, err := srv.AddReview(ctx, "student-01", "3", usecase.ReviewInput{Rating: 4, Comment: "  Lovely community "})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", review.UserName)
	assert.Equal(t, "Lovely community", review.Comment)

	stored, err := env.products.FindByID(ctx, "3")
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, review.ID, stored.Reviews[0].ID)

	events := env.publisher.events(service.EventReviewAdded)
	require.Len(t, events, 1)
	assert.Equal(t, "4", events[0].Attributes["rating"])
	assert.Equal(t, "The Creative Hub", events[0].Attributes["product_name"])
}

func TestLibraryService_AddReview_Rejected(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	_, err := srv.AddReview(ctx, "student-01", "3", usecase.ReviewInput{Rating: 0})
	assert.ErrorIs(t, err, domainerrors.ErrRatingRequired)

	_, err = srv.AddReview(ctx, "student-01", "1", usecase.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domainerrors.ErrReviewAlreadyExists)

	_, err = srv.AddReview(ctx, "student-01", "2", usecase.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domainerrors.ErrNotPurchased)

	stored, err := env.products.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, stored.Reviews, 2)
	assert.Empty(t, env.publisher.events(service.EventReviewAdded))
}

func TestLibraryService_ClaimFree(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLibraryService(t, env)
	ctx := context.Background()

	freebie := env.addProduct(t, &entity.Product{
		ID:        "free-1",
		CreatorID: seedCreatorID,
		Name:      "Starter Kit",
		Content:   entity.DigitalContent{},
	})

	sale, err := srv.ClaimFree(ctx, "student-02", freebie.ID, seedReferral)
	require.NoError(t, err)
	assert.Equal(t, float64(0), sale.Amount)
	assert.Equal(t, seedCreatorID, sale.CreatorID)

	items, err := srv.List(ctx, "student-02")
	require.NoError(t, err)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Product.ID)
	}
	assert.Contains(t, ids, freebie.ID)

	affSales, err := env.affiliates.ListSales(ctx, seedReferral)
	require.NoError(t, err)
	assert.Len(t, affSales, 4)

	events := env.publisher.events(service.EventSaleRecorded)
	require.Len(t, events, 1)
	assert.Equal(t, seedReferral, events[0].Attributes["affiliate_id"])

	t.Run("already claimed", func(t *testing.T) {
		_, err := srv.ClaimFree(ctx, "student-02", freebie.ID, "")
		require.ErrorIs(t, err, domainerrors.ErrConflict)
		assert.Equal(t, "This product is already in your library.", appMessage(t, err))
	})

	t.Run("owner", func(t *testing.T) {
		_, err := srv.ClaimFree(ctx, seedCreatorID, freebie.ID, "")
		require.ErrorIs(t, err, domainerrors.ErrConflict)
		assert.Equal(t, "You already own this product.", appMessage(t, err))
	})

	t.Run("paid product", func(t *testing.T) {
		_, err := srv.ClaimFree(ctx, "student-03", "2", "")
		require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		assert.Equal(t, "Only free products can be claimed.", appMessage(t, err))
	})
}
