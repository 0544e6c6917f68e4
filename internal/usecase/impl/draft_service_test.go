package impl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/authoring"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/infra/imaging"
	"coursecraft/internal/usecase"
)

func newTestDraftService(env *testEnv) usecase.DraftUsecase {
	return NewDraftService(DraftServiceParams{
		UserRepo:    env.users,
		ProductRepo: env.products,
		Catalogue:   newTestProductService(env),
		Objects:     env.objects,
		Images:      imaging.NewImageProcessor(),
		Generator:   env.generator,
		Logger:      env.logger,
	})
}

func strPtr(s string) *string { return &s }

func uploadOf(name string, data []byte) usecase.Media {
	return usecase.Media{Upload: &usecase.Upload{FileName: name, ContentType: "image/png", Data: bytes.NewReader(data)}}
}

// objectKey strips the public upload prefix.
func objectKey(url string) string {
	return strings.TrimPrefix(url, "/uploads/")
}

func TestDraftService_OpenAndCommit_NewProduct(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)
	assert.Equal(t, authoring.StateEmpty, view.State)
	assert.Equal(t, entity.CurrencyUSD, view.Currency, "new drafts use the creator's default currency")

	_, err = srv.Update(ctx, seedCreatorID, view.ID, authoring.Patch{Name: strPtr("Color Theory")})
	require.NoError(t, err)

	view, err = srv.AddLesson(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	require.Len(t, view.Lessons, 1)

	_, err = srv.EditLesson(ctx, seedCreatorID, view.ID, view.Lessons[0].ID, authoring.LessonPatch{Title: strPtr("Hue and value")})
	require.NoError(t, err)

	product, err := srv.Commit(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "Color Theory", product.Name)
	assert.Equal(t, entity.ProductCourse, product.Type())
	require.Len(t, product.Lessons(), 1)
	assert.Equal(t, "Hue and value", product.Lessons()[0].Title)
	assert.NotEmpty(t, product.ImageURL, "a placeholder cover is assigned")

	stored, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, stored.Name)

	_, err = srv.Get(ctx, seedCreatorID, view.ID)
	assert.ErrorIs(t, err, domainerrors.ErrDraftNotFound)
}

func TestDraftService_Commit_InvalidKeepsDraftOpen(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	_, err = srv.Commit(ctx, seedCreatorID, view.ID)
	require.ErrorIs(t, err, domainerrors.ErrProductInvalid)
	assert.Equal(t, "required", domainerrors.FieldErrors(err)["name"])

	_, err = srv.Get(ctx, seedCreatorID, view.ID)
	assert.NoError(t, err)
}

// rejectingCatalogue fails every save.
type rejectingCatalogue struct {
	usecase.ProductUsecase
	err error
}

func (c rejectingCatalogue) Upsert(context.Context, string, *entity.Product) (*entity.Product, error) {
	return nil, c.err
}

func TestDraftService_Commit_SaveFailureKeepsDraftAndUploads(t *testing.T) {
	env := newTestEnv(t)
	srv := NewDraftService(DraftServiceParams{
		UserRepo:    env.users,
		ProductRepo: env.products,
		Catalogue:   rejectingCatalogue{err: domainerrors.ErrProductInvalid},
		Objects:     env.objects,
		Images:      imaging.NewImageProcessor(),
		Generator:   env.generator,
		Logger:      env.logger,
	})
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)
	_, err = srv.Update(ctx, seedCreatorID, view.ID, authoring.Patch{Name: strPtr("Color Theory")})
	require.NoError(t, err)
	view, err = srv.SetImage(ctx, seedCreatorID, view.ID, uploadOf("cover.png", pngBytes(t, 40, 30)))
	require.NoError(t, err)

	_, err = srv.Commit(ctx, seedCreatorID, view.ID)
	require.ErrorIs(t, err, domainerrors.ErrProductInvalid)

	kept, err := srv.Get(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "Color Theory", kept.Name)
	assert.NotEqual(t, authoring.StateCommitted, kept.State)

	r, _, err := env.objects.Open(ctx, objectKey(view.ImageURL))
	require.NoError(t, err, "the cover is still owned by the draft")
	require.NoError(t, r.Close())

	require.NoError(t, srv.Cancel(ctx, seedCreatorID, view.ID))
	_, _, err = env.objects.Open(ctx, objectKey(view.ImageURL))
	assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound)
}

func TestDraftService_Open_ExistingProduct(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "1")
	require.NoError(t, err)
	assert.Equal(t, authoring.StateEditing, view.State)
	assert.Equal(t, "1", view.ProductID)
	assert.Len(t, view.Lessons, 2)

	_, err = srv.Update(ctx, seedCreatorID, view.ID, authoring.Patch{Name: strPtr("Figma Pro")})
	require.NoError(t, err)

	product, err := srv.Commit(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", product.ID)
	assert.Len(t, product.Reviews, 2, "reviews survive editing")

	list, err := env.products.ListByCreator(ctx, seedCreatorID)
	require.NoError(t, err)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "Figma Pro", list[0].Name)
}

func TestDraftService_Open_Errors(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	_, err := srv.Open(ctx, "student-01", "")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = srv.Open(ctx, seedCreatorID, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestDraftService_OtherCreatorCannotSeeDraft(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	_, err = srv.Get(ctx, "creator-02", view.ID)
	assert.ErrorIs(t, err, domainerrors.ErrDraftNotFound)
}

func TestDraftService_Cancel_ReleasesUploads(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	view, err = srv.SetImage(ctx, seedCreatorID, view.ID, uploadOf("cover.png", pngBytes(t, 40, 30)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(view.ImageURL, "/uploads/"))

	r, _, err := env.objects.Open(ctx, objectKey(view.ImageURL))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	require.NoError(t, srv.Cancel(ctx, seedCreatorID, view.ID))

	_, _, err = env.objects.Open(ctx, objectKey(view.ImageURL))
	assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound)

	err = srv.Cancel(ctx, seedCreatorID, view.ID)
	assert.ErrorIs(t, err, domainerrors.ErrDraftNotFound)
}

func TestDraftService_SetImage_ReplacesPreviousUpload(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	first, err := srv.SetImage(ctx, seedCreatorID, view.ID, uploadOf("a.png", pngBytes(t, 10, 10)))
	require.NoError(t, err)

	second, err := srv.SetImage(ctx, seedCreatorID, view.ID, usecase.Media{URL: "https://example.com/cover.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cover.jpg", second.ImageURL)

	_, _, err = env.objects.Open(ctx, objectKey(first.ImageURL))
	assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound)
}

func TestDraftService_CropImage(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	t.Run("no image", func(t *testing.T) {
		_, err := srv.CropImage(ctx, seedCreatorID, view.ID, entity.AspectWide)
		assert.ErrorIs(t, err, domainerrors.ErrNoImage)
	})

	t.Run("bad ratio", func(t *testing.T) {
		_, err := srv.CropImage(ctx, seedCreatorID, view.ID, entity.AspectRatio("5:1"))
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("external image cannot be cropped", func(t *testing.T) {
		_, err := srv.SetImage(ctx, seedCreatorID, view.ID, usecase.Media{URL: "https://example.com/x.png"})
		require.NoError(t, err)

		_, err = srv.CropImage(ctx, seedCreatorID, view.ID, entity.AspectWide)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidImage)
	})

	t.Run("upload is replaced by the crop", func(t *testing.T) {
		uploaded, err := srv.SetImage(ctx, seedCreatorID, view.ID, uploadOf("cover.png", pngBytes(t, 200, 200)))
		require.NoError(t, err)

		cropped, err := srv.CropImage(ctx, seedCreatorID, view.ID, entity.AspectWide)
		require.NoError(t, err)
		assert.NotEqual(t, uploaded.ImageURL, cropped.ImageURL)

		_, info, err := env.objects.ReadAll(ctx, cropped.ImageURL)
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.ContentType)

		_, _, err = env.objects.Open(ctx, objectKey(uploaded.ImageURL))
		assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound)
	})
}

func TestDraftService_GenerateImage(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	_, err = srv.GenerateImage(ctx, seedCreatorID, view.ID, "  ", "")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	env.generator.On("GenerateImage", mock.Anything, "a calm desk", entity.AspectSquare).
		Return(&service.GeneratedImage{Data: pngBytes(t, 8, 8), MIMEType: "image/png"}, nil).Once()

	got, err := srv.GenerateImage(ctx, seedCreatorID, view.ID, "a calm desk", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.ImageURL, "/uploads/"))
	env.generator.AssertExpectations(t)
}

func TestDraftService_GenerateImage_GatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	env.generator.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrGenerationUnavailable).Once()

	_, err = srv.GenerateImage(ctx, seedCreatorID, view.ID, "anything", entity.AspectWide)
	assert.ErrorIs(t, err, domainerrors.ErrGenerationUnavailable)

	got, err := srv.Get(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
}

func TestDraftService_GenerateDescription(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	_, err = srv.GenerateDescription(ctx, seedCreatorID, view.ID, "beginner")
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Equal(t, "Please enter a product title first.", err.(domainerrors.AppError).Message())

	_, err = srv.Update(ctx, seedCreatorID, view.ID, authoring.Patch{Name: strPtr("Logo Design")})
	require.NoError(t, err)

	env.generator.On("GenerateDescription", mock.Anything, "Logo Design", entity.ProductCourse, "beginner").
		Return("Learn to design memorable logos.", nil).Once()

	got, err := srv.GenerateDescription(ctx, seedCreatorID, view.ID, "beginner")
	require.NoError(t, err)
	assert.Equal(t, "Learn to design memorable logos.", got.Description)
}

func TestDraftService_GenerateCertificate(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	design := entity.CertificateDesign{Prompt: "ocean", BackgroundColor: "#001122", TextColor: "#FFFFFF"}
	env.generator.On("GenerateCertificateTheme", mock.Anything, "ocean").Return(design, nil).Once()

	got, err := srv.GenerateCertificate(ctx, seedCreatorID, view.ID, "ocean")
	require.NoError(t, err)
	assert.Equal(t, "#001122", got.CertificateDesign.BackgroundColor)

	env.generator.On("GenerateCertificateTheme", mock.Anything, "ocean").
		Return(entity.CertificateDesign{}, domainerrors.GenerationFailed("certificate design")).Once()

	_, err = srv.GenerateCertificate(ctx, seedCreatorID, view.ID, "")
	assert.ErrorIs(t, err, domainerrors.ErrGenerationFailed, "an empty prompt reuses the draft's prompt")
}

func TestDraftService_SchoolDaysAndResources(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestDraftService(env)
	ctx := context.Background()

	view, err := srv.Open(ctx, seedCreatorID, "")
	require.NoError(t, err)

	school := entity.ProductSchool
	_, err = srv.Update(ctx, seedCreatorID, view.ID, authoring.Patch{Name: strPtr("Bootcamp"), Type: &school})
	require.NoError(t, err)

	view, err = srv.AddSchoolDay(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	require.Len(t, view.SchoolDays, 1)
	dayID := view.SchoolDays[0].ID

	view, err = srv.AddLessonToDay(ctx, seedCreatorID, view.ID, dayID)
	require.NoError(t, err)
	lessonID := view.SchoolDays[0].Lessons[0].ID

	view, err = srv.AttachLessonVideo(ctx, seedCreatorID, view.ID, dayID, lessonID, usecase.Media{URL: "https://youtu.be/e_TCk_aY-EA"})
	require.NoError(t, err)

	view, err = srv.AddResource(ctx, seedCreatorID, view.ID, authoring.ResourceScope{DayID: dayID, LessonID: lessonID})
	require.NoError(t, err)
	require.Len(t, view.SchoolDays[0].Lessons[0].Resources, 1)

	_, err = srv.RenameSchoolDay(ctx, seedCreatorID, view.ID, "missing", "x")
	assert.ErrorIs(t, err, domainerrors.ErrSchoolDayNotFound)

	product, err := srv.Commit(ctx, seedCreatorID, view.ID)
	require.NoError(t, err)
	require.Len(t, product.Lessons(), 1)
	assert.Equal(t, "https://www.youtube.com/embed/e_TCk_aY-EA", product.Lessons()[0].VideoURL)
}
