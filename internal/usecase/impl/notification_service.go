package impl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// studentMilestones are the distinct-student counts worth celebrating.
var studentMilestones = []int{10, 50, 100, 500, 1000, 5000, 10000}

// notificationService implements the NotificationUsecase interface.
type notificationService struct {
	txManager        repository.TransactionManager
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NotificationServiceParams holds dependencies for NotificationService, injected by Fx.
type NotificationServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	NotificationRepo repository.NotificationRepository
	Logger           *slog.Logger
}

// NewNotificationService is the constructor for notificationService.
func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	return &notificationService{
		txManager:        params.TxManager,
		notificationRepo: params.NotificationRepo,
		logger:           params.Logger,
	}
}

func (srv *notificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Feed returns the user's notifications, newest first.
func (srv *notificationService) Feed(ctx context.Context, userID string) (*usecase.NotificationFeed, error) {
	items, err := srv.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	return &usecase.NotificationFeed{Items: items, Unread: unread}, nil
}

func (srv *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := srv.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domainerrors.ErrNotificationNotFound
		}

		return errors.Wrap(err, "failed to mark notification read")
	}

	return nil
}

func (srv *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return errors.Wrap(srv.notificationRepo.MarkAllRead(ctx, userID), "failed to mark notifications read")
}

// HandleStoreEvent notifies the creator about reviews, sales and student
// milestones. Notification ids derive from the event id, so a redelivered
// event is only applied once.
func (srv *notificationService) HandleStoreEvent(ctx context.Context, event *service.StoreEvent) error {
	if event == nil || event.CreatorID == "" {
		return nil
	}

	date := event.OccurredAt
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var created int
	err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		notifications := f.NewNotificationRepository()

		existing, err := notifications.ListByUser(ctx, event.CreatorID)
		if err != nil {
			return errors.Wrap(err, "failed to list notifications")
		}

		pending, err := srv.notificationsFor(ctx, f, event, date)
		if err != nil {
			return err
		}

		for _, n := range pending {
			if slices.ContainsFunc(existing, func(e entity.Notification) bool { return e.ID == n.ID }) {
				continue
			}
			if err := notifications.Create(ctx, n); err != nil {
				return errors.Wrap(err, "failed to create notification")
			}
			created++
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Debug("Store event handled",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
		slog.Int("notifications", created),
	)

	return nil
}

func (srv *notificationService) notificationsFor(ctx context.Context, f repository.RepositoryFactory, event *service.StoreEvent, date time.Time) ([]entity.Notification, error) {
	notify := func(suffix string, t entity.NotificationType, message string) entity.Notification {
		return entity.Notification{
			ID:      event.EventID + suffix,
			UserID:  event.CreatorID,
			Type:    t,
			Message: message,
			Date:    date,
		}
	}

	switch event.Type {
	case service.EventReviewAdded:
		return []entity.Notification{notify("", entity.NotificationReview, fmt.Sprintf(
			"%s left a %s-star review on your product.", event.Attributes["reviewer_name"], event.Attributes["rating"],
		))}, nil

	case service.EventSaleRecorded:
		out := []entity.Notification{notify("", entity.NotificationSale, fmt.Sprintf(
			"You made a new sale for \"%s\"!", event.Attributes["product_name"],
		))}

		reached, err := srv.milestoneReached(ctx, f.NewSaleRepository(), event)
		if err != nil {
			return nil, err
		}
		if reached > 0 {
			out = append(out, notify("-milestone", entity.NotificationMilestone, fmt.Sprintf(
				"Congratulations! You reached %d students.", reached,
			)))
		}

		return out, nil

	default:
		return nil, nil
	}
}

// milestoneReached returns the milestone hit by the buyer behind event, or
// zero when this sale did not add a new student or did not land on one.
func (srv *notificationService) milestoneReached(ctx context.Context, sales repository.SaleRepository, event *service.StoreEvent) (int, error) {
	if event.ActorID == "" {
		return 0, nil
	}

	all, err := sales.ListByCreator(ctx, event.CreatorID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list sales")
	}

	students := make(map[string]bool)
	byActor := 0
	for _, s := range all {
		students[s.StudentID] = true
		if s.StudentID == event.ActorID {
			byActor++
		}
	}
	if byActor != 1 {
		return 0, nil
	}

	if slices.Contains(studentMilestones, len(students)) {
		return len(students), nil
	}

	return 0, nil
}
