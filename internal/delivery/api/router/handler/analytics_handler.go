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

// AnalyticsHandlerParams holds dependencies for AnalyticsHandler, injected by Fx.
type AnalyticsHandlerParams struct {
	fx.In

	AnalyticsUC usecase.AnalyticsUsecase
	Logger      *slog.Logger
}

// AnalyticsHandler serves the creator dashboard and student list.
type AnalyticsHandler struct {
	analyticsUC usecase.AnalyticsUsecase
	logger      *slog.Logger
}

// NewAnalyticsHandler is the constructor for AnalyticsHandler.
func NewAnalyticsHandler(params AnalyticsHandlerParams) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUC: params.AnalyticsUC,
		logger:      params.Logger,
	}
}

func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	summary, err := h.analyticsUC.Dashboard(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary)
}

func (h *AnalyticsHandler) Students(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	rows, err := h.analyticsUC.Students(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, rows)
}
