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

// NotificationHandlerParams holds dependencies for NotificationHandler, injected by Fx.
type NotificationHandlerParams struct {
	fx.In

	NotificationUC usecase.NotificationUsecase
	Logger         *slog.Logger
}

type NotificationHandler struct {
	notificationUC usecase.NotificationUsecase
	logger         *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler.
func NewNotificationHandler(params NotificationHandlerParams) *NotificationHandler {
	return &NotificationHandler{
		notificationUC: params.NotificationUC,
		logger:         params.Logger,
	}
}

func (h *NotificationHandler) Feed(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	feed, err := h.notificationUC.Feed(c.Request().Context(), id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, feed)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	if err := h.notificationUC.MarkRead(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	if err := h.notificationUC.MarkAllRead(c.Request().Context(), id.UserID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
