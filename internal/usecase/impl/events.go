package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/service"
)

// publishStoreEvent fills in the event envelope and publishes it. The change
// it describes is already persisted, so a failed publish is only logged.
func publishStoreEvent(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, event *service.StoreEvent) {
	if publisher == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = entity.NewID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	}

	if err := publisher.PublishStoreEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish store event",
			slog.String("event_id", event.EventID),
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}

// releaseObject returns a transient.Releaser deleting objects from store. It
// runs detached from the request that triggered it.
func releaseObject(store service.ObjectStore, logger *slog.Logger) func(ref string) {
	return func(ref string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := store.Delete(ctx, ref); err != nil {
			logger.Warn("Failed to release upload", slog.String("ref", ref), slog.Any("error", err))
		}
	}
}
