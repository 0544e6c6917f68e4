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

// AffiliateHandlerParams holds dependencies for AffiliateHandler, injected by Fx.
type AffiliateHandlerParams struct {
	fx.In

	AffiliateUC usecase.AffiliateUsecase
	Logger      *slog.Logger
}

// AffiliateHandler serves the affiliate dashboard and referral links.
type AffiliateHandler struct {
	affiliateUC usecase.AffiliateUsecase
	logger      *slog.Logger
}

// NewAffiliateHandler is the constructor for AffiliateHandler.
func NewAffiliateHandler(params AffiliateHandlerParams) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateUC: params.AffiliateUC,
		logger:      params.Logger,
	}
}

// LinkRequest selects a store, and optionally one of its products.
type LinkRequest struct {
	CreatorID string `json:"creatorId" query:"creatorId" validate:"required"`
	ProductID string `json:"productId" query:"productId"`
}

func (h *AffiliateHandler) Dashboard(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	dash, err := h.affiliateUC.Dashboard(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, dash)
}

func (h *AffiliateHandler) CreateLink(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	link, err := h.affiliateUC.CreateLink(c.Request().Context(), id.UserID, req.CreatorID, req.ProductID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, link)
}

// LinkQRCode returns the referral link encoded as a PNG.
func (h *AffiliateHandler) LinkQRCode(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req LinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	png, err := h.affiliateUC.LinkQRCode(c.Request().Context(), id.UserID, req.CreatorID, req.ProductID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
