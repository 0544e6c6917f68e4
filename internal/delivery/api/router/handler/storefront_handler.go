package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/internal/usecase"
)

// StorefrontHandlerParams holds dependencies for StorefrontHandler, injected by Fx.
type StorefrontHandlerParams struct {
	fx.In

	StorefrontUC usecase.StorefrontUsecase
	AffiliateUC  usecase.AffiliateUsecase
	Logger       *slog.Logger
}

// StorefrontHandler serves public store pages and uploaded media.
type StorefrontHandler struct {
	storefrontUC usecase.StorefrontUsecase
	affiliateUC  usecase.AffiliateUsecase
	logger       *slog.Logger
}

// NewStorefrontHandler is the constructor for StorefrontHandler.
func NewStorefrontHandler(params StorefrontHandlerParams) *StorefrontHandler {
	return &StorefrontHandler{
		storefrontUC: params.StorefrontUC,
		affiliateUC:  params.AffiliateUC,
		logger:       params.Logger,
	}
}

// trackReferral records a click for ?ref. A failure never blocks the page.
func (h *StorefrontHandler) trackReferral(c echo.Context, creatorID, productID string) {
	ref := c.QueryParam("ref")
	if ref == "" {
		return
	}

	if err := h.affiliateUC.TrackClick(c.Request().Context(), ref, creatorID, productID); err != nil {
		h.logger.Warn("failed to track referral click",
			slog.String("ref", ref),
			slog.String("creator_id", creatorID),
			slog.Any("error", err),
		)
	}
}

// Store renders a creator's public landing page.
func (h *StorefrontHandler) Store(c echo.Context) error {
	creatorID := c.Param("creatorId")

	var buf bytes.Buffer
	if err := h.storefrontUC.RenderStore(c.Request().Context(), &buf, creatorID); err != nil {
		return errors.WithStack(err)
	}
	h.trackReferral(c, creatorID, "")

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Product renders one product of a creator's store.
func (h *StorefrontHandler) Product(c echo.Context) error {
	creatorID, productID := c.Param("creatorId"), c.Param("productId")

	var buf bytes.Buffer
	if err := h.storefrontUC.RenderProduct(c.Request().Context(), &buf, creatorID, productID); err != nil {
		return errors.WithStack(err)
	}
	h.trackReferral(c, creatorID, productID)

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Upload streams a stored object.
func (h *StorefrontHandler) Upload(c echo.Context) error {
	rc, info, err := h.storefrontUC.OpenUpload(c.Request().Context(), c.Param("*"))
	if err != nil {
		return errors.WithStack(err)
	}
	defer rc.Close()

	res := c.Response()
	if info.Size > 0 {
		res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	res.Header().Set(echo.HeaderContentType, contentType)
	res.WriteHeader(http.StatusOK)

	if _, err := io.Copy(res, rc); err != nil {
		return errors.Wrap(err, "failed to stream upload")
	}

	return nil
}
