package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/response"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/usecase"
)

// SiteEditorHandlerParams holds dependencies for SiteEditorHandler, injected by Fx.
type SiteEditorHandlerParams struct {
	fx.In

	SiteEditorUC usecase.SiteEditorUsecase
	Logger       *slog.Logger
}

// SiteEditorHandler exposes landing page editing sessions.
type SiteEditorHandler struct {
	siteEditorUC usecase.SiteEditorUsecase
	logger       *slog.Logger
}

// NewSiteEditorHandler is the constructor for SiteEditorHandler.
func NewSiteEditorHandler(params SiteEditorHandlerParams) *SiteEditorHandler {
	return &SiteEditorHandler{
		siteEditorUC: params.SiteEditorUC,
		logger:       params.Logger,
	}
}

// SectionFieldRequest sets one field on the open section.
type SectionFieldRequest struct {
	Value string `json:"value"`
}

// PromptRequest carries a free-text generation prompt.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// TestimonialsRequest replaces the open section's testimonials.
type TestimonialsRequest struct {
	Items []entity.Testimonial `json:"items"`
}

// FAQRequest replaces the open section's questions.
type FAQRequest struct {
	Items []entity.FAQItem `json:"items"`
}

// TemplateRequest selects a built-in template.
type TemplateRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
}

type editorCall func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error)

func (h *SiteEditorHandler) respond(c echo.Context, fn editorCall) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	view, err := fn(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Open starts an editing session on the caller's page.
func (h *SiteEditorHandler) Open(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.siteEditorUC.Open(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, view)
}

func (h *SiteEditorHandler) Get(c echo.Context) error {
	return h.respond(c, h.siteEditorUC.Get)
}

// Preview renders the working page with a link on every section.
func (h *SiteEditorHandler) Preview(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	editorID := c.Param("id")
	editURL := func(sectionID string) string {
		return "/api/v1/site-editor/" + url.PathEscape(editorID) + "/sections/" + url.PathEscape(sectionID)
	}

	var buf bytes.Buffer
	if err := h.siteEditorUC.Preview(c.Request().Context(), &buf, id.UserID, editorID, editURL); err != nil {
		return errors.WithStack(err)
	}

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *SiteEditorHandler) OpenSection(c echo.Context) error {
	sectionID := c.Param("sectionId")

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.OpenSection(ctx, creatorID, editorID, sectionID)
	})
}

func (h *SiteEditorHandler) SetSectionField(c echo.Context) error {
	var req SectionFieldRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	field := c.Param("field")

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.SetSectionField(ctx, creatorID, editorID, field, req.Value)
	})
}

// SetSectionImage takes a multipart "file" or a pasted "url".
func (h *SiteEditorHandler) SetSectionImage(c echo.Context) error {
	media, done, err := readMedia(c)
	if err != nil {
		return err
	}
	defer done()

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.SetSectionImage(ctx, creatorID, editorID, media)
	})
}

func (h *SiteEditorHandler) GenerateSectionImage(c echo.Context) error {
	var req PromptRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.GenerateSectionImage(ctx, creatorID, editorID, req.Prompt)
	})
}

func (h *SiteEditorHandler) SetTestimonials(c echo.Context) error {
	var req TestimonialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.SetTestimonials(ctx, creatorID, editorID, req.Items)
	})
}

func (h *SiteEditorHandler) SetFAQItems(c echo.Context) error {
	var req FAQRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.SetFAQItems(ctx, creatorID, editorID, req.Items)
	})
}

func (h *SiteEditorHandler) SaveSection(c echo.Context) error {
	return h.respond(c, h.siteEditorUC.SaveSection)
}

func (h *SiteEditorHandler) CancelSection(c echo.Context) error {
	return h.respond(c, h.siteEditorUC.CancelSection)
}

func (h *SiteEditorHandler) ApplyTemplate(c echo.Context) error {
	var req TemplateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.ApplyTemplate(ctx, creatorID, editorID, req.TemplateID)
	})
}

func (h *SiteEditorHandler) Generate(c echo.Context) error {
	var req PromptRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, editorID string) (*usecase.SiteEditorView, error) {
		return h.siteEditorUC.Generate(ctx, creatorID, editorID, req.Prompt)
	})
}

// Save publishes the working page and closes the session.
func (h *SiteEditorHandler) Save(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	page, err := h.siteEditorUC.Save(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, page)
}

func (h *SiteEditorHandler) Discard(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	if err := h.siteEditorUC.Discard(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
