package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/response"
	"coursecraft/internal/domain/authoring"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/usecase"
)

// DraftHandlerParams holds dependencies for DraftHandler, injected by Fx.
type DraftHandlerParams struct {
	fx.In

	DraftUC usecase.DraftUsecase
	Logger  *slog.Logger
}

// DraftHandler exposes product editing sessions. Every route carries the
// draft id as :id; lesson, day and resource ids come from the path too.
type DraftHandler struct {
	draftUC usecase.DraftUsecase
	logger  *slog.Logger
}

// NewDraftHandler is the constructor for DraftHandler.
func NewDraftHandler(params DraftHandlerParams) *DraftHandler {
	return &DraftHandler{
		draftUC: params.DraftUC,
		logger:  params.Logger,
	}
}

// OpenDraftRequest selects the product to edit; empty starts a new one.
type OpenDraftRequest struct {
	ProductID string `json:"productId"`
}

// RenameDayRequest renames a school day.
type RenameDayRequest struct {
	Title string `json:"title"`
}

// CropRequest selects the crop ratio.
type CropRequest struct {
	Ratio entity.AspectRatio `json:"ratio" validate:"required"`
}

// GenerateImageRequest describes an image to generate.
type GenerateImageRequest struct {
	Prompt string             `json:"prompt"`
	Ratio  entity.AspectRatio `json:"ratio"`
}

// GenerateDescriptionRequest carries optional keywords.
type GenerateDescriptionRequest struct {
	Keywords string `json:"keywords"`
}

// GenerateCertificateRequest describes the certificate theme.
type GenerateCertificateRequest struct {
	Prompt string `json:"prompt"`
}

type draftCall func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error)

// respond runs fn for the caller and writes the resulting draft.
func (h *DraftHandler) respond(c echo.Context, fn draftCall) error {
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

// Open starts a draft.
func (h *DraftHandler) Open(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req OpenDraftRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.draftUC.Open(c.Request().Context(), id.UserID, req.ProductID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, view)
}

func (h *DraftHandler) Get(c echo.Context) error {
	return h.respond(c, h.draftUC.Get)
}

func (h *DraftHandler) Update(c echo.Context) error {
	var patch authoring.Patch
	if err := bind(c, &patch); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.Update(ctx, creatorID, draftID, patch)
	})
}

// Cancel discards the draft and its uploads.
func (h *DraftHandler) Cancel(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	if err := h.draftUC.Cancel(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Commit saves the draft as a product.
func (h *DraftHandler) Commit(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	product, err := h.draftUC.Commit(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

func (h *DraftHandler) AddLesson(c echo.Context) error {
	if dayID := c.Param("dayId"); dayID != "" {
		return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
			return h.draftUC.AddLessonToDay(ctx, creatorID, draftID, dayID)
		})
	}

	return h.respond(c, h.draftUC.AddLesson)
}

func (h *DraftHandler) EditLesson(c echo.Context) error {
	var patch authoring.LessonPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	dayID, lessonID := c.Param("dayId"), c.Param("lessonId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		if dayID != "" {
			return h.draftUC.EditDayLesson(ctx, creatorID, draftID, dayID, lessonID, patch)
		}

		return h.draftUC.EditLesson(ctx, creatorID, draftID, lessonID, patch)
	})
}

func (h *DraftHandler) DeleteLesson(c echo.Context) error {
	dayID, lessonID := c.Param("dayId"), c.Param("lessonId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		if dayID != "" {
			return h.draftUC.DeleteLessonFromDay(ctx, creatorID, draftID, dayID, lessonID)
		}

		return h.draftUC.DeleteLesson(ctx, creatorID, draftID, lessonID)
	})
}

// AttachLessonVideo takes a multipart "file" or a pasted "url".
func (h *DraftHandler) AttachLessonVideo(c echo.Context) error {
	media, done, err := readMedia(c)
	if err != nil {
		return err
	}
	defer done()

	dayID, lessonID := c.Param("dayId"), c.Param("lessonId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.AttachLessonVideo(ctx, creatorID, draftID, dayID, lessonID, media)
	})
}

func (h *DraftHandler) AddSchoolDay(c echo.Context) error {
	return h.respond(c, h.draftUC.AddSchoolDay)
}

func (h *DraftHandler) RenameSchoolDay(c echo.Context) error {
	var req RenameDayRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	dayID := c.Param("dayId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.RenameSchoolDay(ctx, creatorID, draftID, dayID, req.Title)
	})
}

func (h *DraftHandler) DeleteSchoolDay(c echo.Context) error {
	dayID := c.Param("dayId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.DeleteSchoolDay(ctx, creatorID, draftID, dayID)
	})
}

// resourceScope reads the scope from the route: no lesson id is the
// product's own list.
func resourceScope(c echo.Context) authoring.ResourceScope {
	return authoring.ResourceScope{DayID: c.Param("dayId"), LessonID: c.Param("lessonId")}
}

func (h *DraftHandler) AddResource(c echo.Context) error {
	scope := resourceScope(c)

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.AddResource(ctx, creatorID, draftID, scope)
	})
}

func (h *DraftHandler) EditResource(c echo.Context) error {
	var patch authoring.ResourcePatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	scope, resourceID := resourceScope(c), c.Param("resourceId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.EditResource(ctx, creatorID, draftID, scope, resourceID, patch)
	})
}

func (h *DraftHandler) DeleteResource(c echo.Context) error {
	scope, resourceID := resourceScope(c), c.Param("resourceId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.DeleteResource(ctx, creatorID, draftID, scope, resourceID)
	})
}

// AttachResourceFile takes a multipart "file" or a pasted "url".
func (h *DraftHandler) AttachResourceFile(c echo.Context) error {
	media, done, err := readMedia(c)
	if err != nil {
		return err
	}
	defer done()

	scope, resourceID := resourceScope(c), c.Param("resourceId")

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.AttachResourceFile(ctx, creatorID, draftID, scope, resourceID, media)
	})
}

// SetImage takes a multipart "file" or a pasted "url".
func (h *DraftHandler) SetImage(c echo.Context) error {
	media, done, err := readMedia(c)
	if err != nil {
		return err
	}
	defer done()

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.SetImage(ctx, creatorID, draftID, media)
	})
}

func (h *DraftHandler) CropImage(c echo.Context) error {
	var req CropRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.CropImage(ctx, creatorID, draftID, req.Ratio)
	})
}

func (h *DraftHandler) GenerateImage(c echo.Context) error {
	var req GenerateImageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.GenerateImage(ctx, creatorID, draftID, req.Prompt, req.Ratio)
	})
}

func (h *DraftHandler) GenerateDescription(c echo.Context) error {
	var req GenerateDescriptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.GenerateDescription(ctx, creatorID, draftID, req.Keywords)
	})
}

func (h *DraftHandler) GenerateCertificate(c echo.Context) error {
	var req GenerateCertificateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return h.respond(c, func(ctx context.Context, creatorID, draftID string) (*usecase.DraftView, error) {
		return h.draftUC.GenerateCertificate(ctx, creatorID, draftID, req.Prompt)
	})
}
