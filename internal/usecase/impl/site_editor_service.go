package impl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/landing"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/transient"
	"coursecraft/internal/usecase"
)

const (
	sectionImageRatio = entity.AspectWide
	sectionImageName  = "section.png"

	// maxImageWorkers bounds concurrent section image generation.
	maxImageWorkers = 3
)

// siteSession is one open site editor with the warnings of its last generation.
type siteSession struct {
	composer *landing.Composer
	warnings []string
}

// siteEditorService implements the SiteEditorUsecase interface.
type siteEditorService struct {
	sessions     *workspaces[*siteSession]
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	templateRepo repository.TemplateRepository
	objects      service.ObjectStore
	generator    service.ContentGenerator
	renderer     *landing.Renderer
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// SiteEditorServiceParams holds dependencies for SiteEditorService, injected by Fx.
type SiteEditorServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	ProductRepo  repository.ProductRepository
	TemplateRepo repository.TemplateRepository
	Objects      service.ObjectStore
	Generator    service.ContentGenerator
	Renderer     *landing.Renderer
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewSiteEditorService is the constructor for siteEditorService.
func NewSiteEditorService(params SiteEditorServiceParams) usecase.SiteEditorUsecase {
	return &siteEditorService{
		sessions:     newWorkspaces[*siteSession](domainerrors.ErrEditorSessionNotFound),
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		productRepo:  params.ProductRepo,
		templateRepo: params.TemplateRepo,
		objects:      params.Objects,
		generator:    params.Generator,
		renderer:     params.Renderer,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
}

func (srv *siteEditorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Open starts editing a working copy of the creator's landing page.
func (srv *siteEditorService) Open(ctx context.Context, creatorID string) (*usecase.SiteEditorView, error) {
	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return nil, err
	}

	templates, err := srv.templateRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	registry := transient.NewRegistry(releaseObject(srv.objects, srv.logger))
	ws := srv.sessions.add(creatorID, &siteSession{
		composer: landing.NewComposer(creator.LandingPage, registry),
	})

	srv.log(ctx).Info("Site editor opened", slog.String("editor_id", ws.id))

	view := siteEditorView(ws)
	view.Templates = templates

	return view, nil
}

// Get returns the working page and open section.
func (srv *siteEditorService) Get(_ context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
	return srv.mutate(creatorID, editorID, func(*siteSession) error { return nil })
}

// Preview renders the working page with an edit link on every section.
func (srv *siteEditorService) Preview(ctx context.Context, w io.Writer, creatorID, editorID string, editURL func(sectionID string) string) error {
	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return err
	}
	products, err := srv.productRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return errors.Wrap(err, "failed to list products")
	}

	var page *entity.LandingPage
	if _, err := srv.mutate(creatorID, editorID, func(s *siteSession) error {
		page = s.composer.Page()

		return nil
	}); err != nil {
		return err
	}

	return srv.renderer.Render(w, landing.View{
		StoreName: creator.Name,
		CreatorID: creator.ID,
		Branding:  creator.StoreBranding,
		Currency:  creator.DefaultCurrency,
		Page:      page,
		Products:  products,
		EditMode:  true,
		EditURL:   editURL,
	})
}

// OpenSection starts editing one section.
func (srv *siteEditorService) OpenSection(_ context.Context, creatorID, editorID, sectionID string) (*usecase.SiteEditorView, error) {
	return srv.mutate(creatorID, editorID, func(s *siteSession) error {
		_, err := s.composer.OpenEditor(sectionID)

		return err
	})
}

func (srv *siteEditorService) SetSectionField(_ context.Context, creatorID, editorID, field, value string) (*usecase.SiteEditorView, error) {
	return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		return e.SetField(field, value)
	})
}

// SetSectionImage sets the open section's image from an upload or a link.
func (srv *siteEditorService) SetSectionImage(ctx context.Context, creatorID, editorID string, media usecase.Media) (*usecase.SiteEditorView, error) {
	if media.Upload == nil {
		return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
			return e.SetImage(transient.Attachment{URL: strings.TrimSpace(media.URL)})
		})
	}

	if _, err := srv.edit(creatorID, editorID, func(*landing.SectionEditor) error { return nil }); err != nil {
		return nil, err
	}

	a, err := srv.objects.Put(ctx, media.Upload.FileName, media.Upload.ContentType, media.Upload.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store upload")
	}

	return srv.installSectionImage(ctx, creatorID, editorID, a)
}

// GenerateSectionImage produces a wide image for the open section.
func (srv *siteEditorService) GenerateSectionImage(ctx context.Context, creatorID, editorID, prompt string) (*usecase.SiteEditorView, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Please enter a prompt for the image.")
	}

	var sectionID string
	if _, err := srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		sectionID = e.SectionID()

		return nil
	}); err != nil {
		return nil, err
	}

	img, err := srv.generator.GenerateImage(ctx, prompt, sectionImageRatio)
	if err != nil {
		return nil, err
	}

	a, err := srv.objects.Put(ctx, sectionImageName, img.MIMEType, bytes.NewReader(img.Data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to store image")
	}

	view, err := srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		if e.SectionID() != sectionID {
			return domainerrors.ErrSessionClosed
		}

		return e.SetImage(a)
	})
	if err != nil {
		releaseObject(srv.objects, srv.log(ctx))(a.Ref)

		return nil, closedIfGone(err)
	}

	return view, nil
}

func (srv *siteEditorService) SetTestimonials(_ context.Context, creatorID, editorID string, items []entity.Testimonial) (*usecase.SiteEditorView, error) {
	return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		return e.SetTestimonials(items)
	})
}

func (srv *siteEditorService) SetFAQItems(_ context.Context, creatorID, editorID string, items []entity.FAQItem) (*usecase.SiteEditorView, error) {
	return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		return e.SetFAQItems(items)
	})
}

// SaveSection writes the open section back to the working page.
func (srv *siteEditorService) SaveSection(_ context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
	return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		return e.Save()
	})
}

// CancelSection drops the open section's changes.
func (srv *siteEditorService) CancelSection(_ context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
	return srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		e.Cancel()

		return nil
	})
}

// ApplyTemplate replaces the working page with a built-in template.
func (srv *siteEditorService) ApplyTemplate(ctx context.Context, creatorID, editorID, templateID string) (*usecase.SiteEditorView, error) {
	tpl, err := srv.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, domainerrors.ErrTemplateNotFound
		}

		return nil, errors.Wrap(err, "failed to find template")
	}

	return srv.mutate(creatorID, editorID, func(s *siteSession) error {
		s.warnings = nil

		return s.composer.ApplyTemplate(tpl)
	})
}

// Generate drafts a new page from prompt and fills in its section images.
func (srv *siteEditorService) Generate(ctx context.Context, creatorID, editorID, prompt string) (*usecase.SiteEditorView, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Please describe the page you want.")
	}
	if _, err := srv.mutate(creatorID, editorID, func(*siteSession) error { return nil }); err != nil {
		return nil, err
	}

	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return nil, err
	}
	products, err := srv.productRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	generated, err := srv.generator.GenerateLandingPage(ctx, prompt, creator.Name, products)
	if err != nil {
		return nil, err
	}

	images, warnings := srv.materializeImages(ctx, generated.ImagePrompts)

	page := generated.Page.Clone()
	for i := range page.Sections {
		a, ok := images[page.Sections[i].ID]
		if !ok || page.Sections[i].Content == nil {
			continue
		}
		f := page.Sections[i].Content.Fields()
		f.ImageURL = a.URL
		page.Sections[i].Content = page.Sections[i].Content.WithFields(f)
	}

	view, err := srv.mutate(creatorID, editorID, func(s *siteSession) error {
		if err := s.composer.ReplacePage(page); err != nil {
			return err
		}
		for _, a := range images {
			s.composer.AttachImage(a)
		}
		s.warnings = warnings

		return nil
	})
	if err != nil {
		release := releaseObject(srv.objects, srv.log(ctx))
		for _, a := range images {
			release(a.Ref)
		}

		return nil, closedIfGone(err)
	}

	srv.log(ctx).Info("Landing page generated",
		slog.String("editor_id", editorID),
		slog.Int("sections", len(page.Sections)),
		slog.Int("image_warnings", len(warnings)),
	)

	return view, nil
}

// materializeImages generates and stores the section images concurrently.
// Failures leave the section without an image and produce a warning.
func (srv *siteEditorService) materializeImages(ctx context.Context, prompts map[string]string) (map[string]transient.Attachment, []string) {
	var (
		mu       sync.Mutex
		images   = make(map[string]transient.Attachment, len(prompts))
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxImageWorkers)

	for sectionID, prompt := range prompts {
		g.Go(func() error {
			img, err := srv.generator.GenerateImage(gctx, prompt, sectionImageRatio)
			if err == nil {
				var a transient.Attachment
				a, err = srv.objects.Put(gctx, sectionImageName, img.MIMEType, bytes.NewReader(img.Data))
				if err == nil {
					mu.Lock()
					images[sectionID] = a
					mu.Unlock()

					return nil
				}
			}

			srv.log(ctx).Warn("Section image not generated", slog.String("section_id", sectionID), slog.Any("error", err))

			mu.Lock()
			warnings = append(warnings, fmt.Sprintf("Could not generate the image for section %s.", sectionID))
			mu.Unlock()

			return nil
		})
	}
	_ = g.Wait()

	return images, warnings
}

// Save writes the working page to the creator and closes the session.
func (srv *siteEditorService) Save(ctx context.Context, creatorID, editorID string) (*entity.LandingPage, error) {
	ws, err := srv.sessions.get(editorID, creatorID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return nil, domainerrors.ErrSessionClosed
	}

	page := ws.value.composer.Page()
	err = srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		users := f.NewUserRepository()
		creator, err := findCreator(ctx, users, creatorID)
		if err != nil {
			return err
		}
		creator.LandingPage = page

		return errors.Wrap(users.Update(ctx, creator), "failed to update landing page")
	})
	if err != nil {
		return nil, err
	}

	saved, err := ws.value.composer.Finish()
	if err != nil {
		return nil, err
	}
	srv.sessions.close(ws)

	srv.log(ctx).Info("Landing page saved", slog.String("editor_id", editorID), slog.Int("sections", len(saved.Sections)))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:       service.EventLandingPagePublished,
		CreatorID:  creatorID,
		ActorID:    creatorID,
		Attributes: map[string]string{"template_id": saved.TemplateID},
	})

	return saved, nil
}

// Discard closes the session without saving.
func (srv *siteEditorService) Discard(ctx context.Context, creatorID, editorID string) error {
	ws, err := srv.sessions.get(editorID, creatorID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return domainerrors.ErrSessionClosed
	}
	if err := ws.value.composer.Discard(); err != nil {
		return err
	}
	srv.sessions.close(ws)

	srv.log(ctx).Info("Site editor discarded", slog.String("editor_id", editorID))

	return nil
}

func (srv *siteEditorService) mutate(creatorID, editorID string, fn func(s *siteSession) error) (*usecase.SiteEditorView, error) {
	ws, err := srv.sessions.get(editorID, creatorID)
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

	return siteEditorView(ws), nil
}

// CloseOwner discards every site editor the creator left open.
func (srv *siteEditorService) CloseOwner(ctx context.Context, creatorID string) int {
	n := srv.sessions.closeOwner(creatorID, func(s *siteSession) {
		_ = s.composer.Discard()
	})
	if n > 0 {
		srv.log(ctx).Info("Abandoned site editors closed", slog.String("creator_id", creatorID), slog.Int("editors", n))
	}

	return n
}

// edit runs fn on the open section editor.
func (srv *siteEditorService) edit(creatorID, editorID string, fn func(e *landing.SectionEditor) error) (*usecase.SiteEditorView, error) {
	return srv.mutate(creatorID, editorID, func(s *siteSession) error {
		e := s.composer.Editor()
		if e == nil {
			return domainerrors.ErrSectionEditorClosed
		}

		return fn(e)
	})
}

func (srv *siteEditorService) installSectionImage(ctx context.Context, creatorID, editorID string, a transient.Attachment) (*usecase.SiteEditorView, error) {
	view, err := srv.edit(creatorID, editorID, func(e *landing.SectionEditor) error {
		return e.SetImage(a)
	})
	if err != nil {
		releaseObject(srv.objects, srv.log(ctx))(a.Ref)

		return nil, closedIfGone(err)
	}

	return view, nil
}

// closedIfGone reports a session that disappeared mid-operation as closed.
func closedIfGone(err error) error {
	if errors.Is(err, domainerrors.ErrEditorSessionNotFound) || errors.Is(err, domainerrors.ErrDraftNotFound) {
		return domainerrors.ErrSessionClosed
	}

	return err
}

func siteEditorView(ws *workspace[*siteSession]) *usecase.SiteEditorView {
	view := &usecase.SiteEditorView{
		ID:       ws.id,
		Page:     ws.value.composer.Page(),
		Warnings: ws.value.warnings,
	}
	if e := ws.value.composer.Editor(); e != nil {
		section := entity.PageSection{ID: e.SectionID(), Content: e.Content()}.Clone()
		view.OpenSectionID = section.ID
		view.OpenSection = &section
	}

	return view
}
