package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/response"
	"coursecraft/internal/usecase"
)

// LibraryHandlerParams holds dependencies for LibraryHandler, injected by Fx.
type LibraryHandlerParams struct {
	fx.In

	LibraryUC usecase.LibraryUsecase
	Logger    *slog.Logger
}

// LibraryHandler serves a signed-in user's purchased products.
type LibraryHandler struct {
	libraryUC usecase.LibraryUsecase
	logger    *slog.Logger
}

// NewLibraryHandler is the constructor for LibraryHandler.
func NewLibraryHandler(params LibraryHandlerParams) *LibraryHandler {
	return &LibraryHandler{
		libraryUC: params.LibraryUC,
		logger:    params.Logger,
	}
}

// ClaimRequest carries the referral code seen on the store link.
type ClaimRequest struct {
	Ref string `json:"ref"`
}

func (h *LibraryHandler) List(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.libraryUC.List(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, items)
}

func (h *LibraryHandler) Course(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.libraryUC.Course(c.Request().Context(), id.UserID, c.Param("productId"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view)
}

func (h *LibraryHandler) CompleteLesson(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.libraryUC.CompleteLesson(c.Request().Context(), id.UserID, c.Param("productId"), c.Param("lessonId"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Certificate returns the rendered certificate as a PNG.
func (h *LibraryHandler) Certificate(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	png, err := h.libraryUC.Certificate(c.Request().Context(), id.UserID, c.Param("productId"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *LibraryHandler) AddReview(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req usecase.ReviewInput
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.libraryUC.AddReview(c.Request().Context(), id.UserID, c.Param("productId"), req)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, review)
}

// ClaimFree adds a free product to the caller's library.
func (h *LibraryHandler) ClaimFree(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req ClaimRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sale, err := h.libraryUC.ClaimFree(c.Request().Context(), id.UserID, c.Param("productId"), req.Ref)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, sale)
}
