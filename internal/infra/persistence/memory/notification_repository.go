package memory

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
)

// notificationRepository implements repository.NotificationRepository.
type notificationRepository struct {
	store accessor
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{store: db}
}

// ListByUser returns a user's notifications, newest first.
func (repo *notificationRepository) ListByUser(_ context.Context, userID string) ([]entity.Notification, error) {
	out := make([]entity.Notification, 0)
	repo.store.read(func(d *dataset) {
		for _, n := range d.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
	})

	return out, nil
}

func (repo *notificationRepository) Create(_ context.Context, n entity.Notification) error {
	return repo.store.write(func(d *dataset) error {
		d.notifications = append([]entity.Notification{n}, d.notifications...)

		return nil
	})
}

// MarkRead flags one of the user's notifications as read.
func (repo *notificationRepository) MarkRead(_ context.Context, userID, id string) error {
	return repo.store.write(func(d *dataset) error {
		for i := range d.notifications {
			if d.notifications[i].ID == id && d.notifications[i].UserID == userID {
				d.notifications[i].Read = true

				return nil
			}
		}

		return repository.ErrNotificationNotFound
	})
}

// MarkAllRead flags every notification of the user as read.
func (repo *notificationRepository) MarkAllRead(_ context.Context, userID string) error {
	return repo.store.write(func(d *dataset) error {
		for i := range d.notifications {
			if d.notifications[i].UserID == userID {
				d.notifications[i].Read = true
			}
		}

		return nil
	})
}
