package usecase

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/service"
)

// NotificationFeed is a user's notifications with the unread count.
type NotificationFeed struct {
	Items  []entity.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// NotificationUsecase serves the notification bell.
type NotificationUsecase interface {
	Feed(ctx context.Context, userID string) (*NotificationFeed, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error

	// HandleStoreEvent turns a store event into creator notifications.
	HandleStoreEvent(ctx context.Context, event *service.StoreEvent) error
}
