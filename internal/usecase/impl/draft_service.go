package impl

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/authoring"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/transient"
	"coursecraft/internal/usecase"
)

const (
	generatedImageName = "generated.png"
	croppedImageName   = "cropped.png"
)

// draftService implements the DraftUsecase interface. Drafts live in memory
// for as long as the creator keeps them open.
type draftService struct {
	drafts    *workspaces[*authoring.Draft]
	userRepo  repository.UserRepository
	products  repository.ProductRepository
	catalogue usecase.ProductUsecase
	objects   service.ObjectStore
	images    service.ImageProcessor
	generator service.ContentGenerator
	logger    *slog.Logger
}

// DraftServiceParams holds dependencies for DraftService, injected by Fx.
type DraftServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	Catalogue   usecase.ProductUsecase
	Objects     service.ObjectStore
	Images      service.ImageProcessor
	Generator   service.ContentGenerator
	Logger      *slog.Logger
}

// NewDraftService is the constructor for draftService.
func NewDraftService(params DraftServiceParams) usecase.DraftUsecase {
	return &draftService{
		drafts:    newWorkspaces[*authoring.Draft](domainerrors.ErrDraftNotFound),
		userRepo:  params.UserRepo,
		products:  params.ProductRepo,
		catalogue: params.Catalogue,
		objects:   params.Objects,
		images:    params.Images,
		generator: params.Generator,
		logger:    params.Logger,
	}
}

func (srv *draftService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Open starts a draft for a new product or for an existing one.
func (srv *draftService) Open(ctx context.Context, creatorID, productID string) (*usecase.DraftView, error) {
	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return nil, err
	}

	registry := transient.NewRegistry(releaseObject(srv.objects, srv.logger))

	var draft *authoring.Draft
	if productID == "" {
		draft = authoring.NewDraft(creatorID, creator.DefaultCurrency, registry)
	} else {
		product, err := findOwnedProduct(ctx, srv.products, creatorID, productID)
		if err != nil {
			return nil, err
		}
		draft = authoring.EditDraft(product, registry)
	}

	ws := srv.drafts.add(creatorID, draft)
	srv.log(ctx).Info("Draft opened", slog.String("draft_id", ws.id), slog.String("product_id", productID))

	return draftView(ws), nil
}

// Get returns the current state of a draft.
func (srv *draftService) Get(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(*authoring.Draft) error { return nil })
}

// Update changes scalar product fields.
func (srv *draftService) Update(ctx context.Context, creatorID, draftID string, patch authoring.Patch) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.Apply(patch)
	})
}

// Cancel discards the draft and releases its uploads.
func (srv *draftService) Cancel(ctx context.Context, creatorID, draftID string) error {
	ws, err := srv.drafts.get(draftID, creatorID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return domainerrors.ErrSessionClosed
	}
	if err := ws.value.Cancel(); err != nil {
		return err
	}
	srv.drafts.close(ws)

	srv.log(ctx).Info("Draft cancelled", slog.String("draft_id", draftID))

	return nil
}

func (srv *draftService) AddLesson(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		_, err := d.AddLesson()

		return err
	})
}

func (srv *draftService) EditLesson(ctx context.Context, creatorID, draftID, lessonID string, patch authoring.LessonPatch) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.EditLesson(lessonID, patch)
	})
}

func (srv *draftService) DeleteLesson(ctx context.Context, creatorID, draftID, lessonID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.DeleteLesson(lessonID)
	})
}

func (srv *draftService) AddSchoolDay(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		_, err := d.AddSchoolDay()

		return err
	})
}

func (srv *draftService) RenameSchoolDay(ctx context.Context, creatorID, draftID, dayID, title string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.RenameSchoolDay(dayID, title)
	})
}

func (srv *draftService) DeleteSchoolDay(ctx context.Context, creatorID, draftID, dayID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.DeleteSchoolDay(dayID)
	})
}

func (srv *draftService) AddLessonToDay(ctx context.Context, creatorID, draftID, dayID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		_, err := d.AddLessonToDay(dayID)

		return err
	})
}

func (srv *draftService) EditDayLesson(ctx context.Context, creatorID, draftID, dayID, lessonID string, patch authoring.LessonPatch) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.EditDayLesson(dayID, lessonID, patch)
	})
}

func (srv *draftService) DeleteLessonFromDay(ctx context.Context, creatorID, draftID, dayID, lessonID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.DeleteLessonFromDay(dayID, lessonID)
	})
}

func (srv *draftService) AddResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		_, err := d.AddResource(scope)

		return err
	})
}

func (srv *draftService) EditResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string, patch authoring.ResourcePatch) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.EditResource(scope, resourceID, patch)
	})
}

func (srv *draftService) DeleteResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string) (*usecase.DraftView, error) {
	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.DeleteResource(scope, resourceID)
	})
}

// AttachLessonVideo sets a lesson's video from an upload or a link.
func (srv *draftService) AttachLessonVideo(ctx context.Context, creatorID, draftID, dayID, lessonID string, media usecase.Media) (*usecase.DraftView, error) {
	return srv.attach(ctx, creatorID, draftID, media, func(d *authoring.Draft, a transient.Attachment) error {
		return d.AttachLessonVideo(dayID, lessonID, a)
	})
}

// AttachResourceFile sets a resource's file from an upload or a link.
func (srv *draftService) AttachResourceFile(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string, media usecase.Media) (*usecase.DraftView, error) {
	return srv.attach(ctx, creatorID, draftID, media, func(d *authoring.Draft, a transient.Attachment) error {
		return d.AttachResourceFile(scope, resourceID, a)
	})
}

// SetImage sets the cover image from an upload or a link.
func (srv *draftService) SetImage(ctx context.Context, creatorID, draftID string, media usecase.Media) (*usecase.DraftView, error) {
	return srv.attach(ctx, creatorID, draftID, media, func(d *authoring.Draft, a transient.Attachment) error {
		return d.SetImage(a)
	})
}

// CropImage centre-crops the uploaded cover image to ratio.
func (srv *draftService) CropImage(ctx context.Context, creatorID, draftID string, ratio entity.AspectRatio) (*usecase.DraftView, error) {
	if !ratio.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unsupported aspect ratio " + string(ratio))
	}

	var imageURL string
	if _, err := srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		imageURL = d.ImageURL()

		return nil
	}); err != nil {
		return nil, err
	}
	if imageURL == "" {
		return nil, domainerrors.ErrNoImage
	}

	data, _, err := srv.objects.ReadAll(ctx, imageURL)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUploadNotFound) {
			return nil, domainerrors.ErrInvalidImage.WithMessage("Failed to load image for cropping. The image might be inaccessible.")
		}

		return nil, errors.Wrap(err, "failed to read image")
	}

	cropped, err := srv.images.Crop(data, ratio)
	if err != nil {
		return nil, err
	}

	return srv.store(ctx, creatorID, draftID, croppedImageName, "image/png", cropped, func(d *authoring.Draft, a transient.Attachment) error {
		return d.SetImage(a)
	})
}

// GenerateImage produces a cover image from a prompt.
func (srv *draftService) GenerateImage(ctx context.Context, creatorID, draftID, prompt string, ratio entity.AspectRatio) (*usecase.DraftView, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Please enter a prompt for the image.")
	}
	if ratio == "" {
		ratio = entity.AspectSquare
	}
	if !ratio.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unsupported aspect ratio " + string(ratio))
	}
	if _, err := srv.mutate(creatorID, draftID, func(*authoring.Draft) error { return nil }); err != nil {
		return nil, err
	}

	img, err := srv.generator.GenerateImage(ctx, prompt, ratio)
	if err != nil {
		return nil, err
	}

	return srv.store(ctx, creatorID, draftID, generatedImageName, img.MIMEType, img.Data, func(d *authoring.Draft, a transient.Attachment) error {
		return d.SetImage(a)
	})
}

// GenerateDescription writes a description from the product name, type and keywords.
func (srv *draftService) GenerateDescription(ctx context.Context, creatorID, draftID, keywords string) (*usecase.DraftView, error) {
	var (
		name        string
		productType entity.ProductType
	)
	if _, err := srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		name, productType = d.Name(), d.Type()

		return nil
	}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Please enter a product title first.")
	}

	text, err := srv.generator.GenerateDescription(ctx, name, productType, keywords)
	if err != nil {
		return nil, err
	}

	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.SetDescription(text)
	})
}

// GenerateCertificate designs the certificate theme. An empty prompt reuses
// the prompt already on the draft.
func (srv *draftService) GenerateCertificate(ctx context.Context, creatorID, draftID, prompt string) (*usecase.DraftView, error) {
	prompt = strings.TrimSpace(prompt)
	if _, err := srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		if prompt == "" {
			prompt = strings.TrimSpace(d.CertificatePrompt())
		}

		return nil
	}); err != nil {
		return nil, err
	}
	if prompt == "" {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Please enter a design prompt.")
	}

	design, err := srv.generator.GenerateCertificateTheme(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return d.SetCertificateDesign(design)
	})
}

// Commit validates the draft and saves the product.
func (srv *draftService) Commit(ctx context.Context, creatorID, draftID string) (*entity.Product, error) {
	ws, err := srv.drafts.get(draftID, creatorID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return nil, domainerrors.ErrSessionClosed
	}

	product, err := ws.value.Build()
	if err != nil {
		return nil, err
	}

	// The draft stays open until the product is stored, so a failed save
	// loses neither edits nor uploads.
	saved, err := srv.catalogue.Upsert(ctx, creatorID, product)
	if err != nil {
		srv.log(ctx).Warn("Draft could not be saved", slog.String("draft_id", draftID), slog.Any("error", err))

		return nil, err
	}
	ws.value.Finalize(saved)
	srv.drafts.close(ws)

	return saved, nil
}

// CloseOwner cancels every draft the creator left open.
func (srv *draftService) CloseOwner(ctx context.Context, creatorID string) int {
	n := srv.drafts.closeOwner(creatorID, func(d *authoring.Draft) {
		_ = d.Cancel()
	})
	if n > 0 {
		srv.log(ctx).Info("Abandoned drafts closed", slog.String("creator_id", creatorID), slog.Int("drafts", n))
	}

	return n
}

// mutate runs fn on the draft under its lock.
func (srv *draftService) mutate(creatorID, draftID string, fn func(d *authoring.Draft) error) (*usecase.DraftView, error) {
	ws, err := srv.drafts.get(draftID, creatorID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return nil, domainerrors.ErrSessionClosed
	}
	if err := fn(ws.value); err != nil {
		return nil, err
	}

	return draftView(ws), nil
}

// attach resolves media to an attachment, uploading it first when needed.
func (srv *draftService) attach(ctx context.Context, creatorID, draftID string, media usecase.Media, fn func(d *authoring.Draft, a transient.Attachment) error) (*usecase.DraftView, error) {
	if media.Upload == nil {
		return srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
			return fn(d, transient.Attachment{URL: strings.TrimSpace(media.URL)})
		})
	}

	if _, err := srv.mutate(creatorID, draftID, func(*authoring.Draft) error { return nil }); err != nil {
		return nil, err
	}

	a, err := srv.objects.Put(ctx, media.Upload.FileName, media.Upload.ContentType, media.Upload.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store upload")
	}

	return srv.install(ctx, creatorID, draftID, a, fn)
}

// store saves produced media and installs it on the draft.
func (srv *draftService) store(ctx context.Context, creatorID, draftID, fileName, contentType string, data []byte, fn func(d *authoring.Draft, a transient.Attachment) error) (*usecase.DraftView, error) {
	a, err := srv.objects.Put(ctx, fileName, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to store image")
	}

	return srv.install(ctx, creatorID, draftID, a, fn)
}

// install hands a stored object to the draft. When the draft has closed in
// the meantime, or rejects it, the object is deleted again.
func (srv *draftService) install(ctx context.Context, creatorID, draftID string, a transient.Attachment, fn func(d *authoring.Draft, a transient.Attachment) error) (*usecase.DraftView, error) {
	view, err := srv.mutate(creatorID, draftID, func(d *authoring.Draft) error {
		return fn(d, a)
	})
	if err != nil {
		releaseObject(srv.objects, srv.log(ctx))(a.Ref)

		return nil, closedIfGone(err)
	}

	return view, nil
}

func draftView(ws *workspace[*authoring.Draft]) *usecase.DraftView {
	return &usecase.DraftView{ID: ws.id, Snapshot: ws.value.Snapshot()}
}
