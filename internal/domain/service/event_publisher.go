package service

import (
	"context"
	"time"
)

// StoreEventType names something that happened in a creator's store.
type StoreEventType string

const (
	EventProductCommitted     StoreEventType = "product.committed"
	EventProductDeleted       StoreEventType = "product.deleted"
	EventLandingPagePublished StoreEventType = "landing_page.published"
	EventReviewAdded          StoreEventType = "review.added"
	EventSaleRecorded         StoreEventType = "sale.recorded"
	EventAffiliateClick       StoreEventType = "affiliate.click"
	EventSettingsUpdated      StoreEventType = "settings.updated"
)

// StoreEvent is published after a store change has been persisted.
type StoreEvent struct {
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
	EventID    string            `json:"event_id"`
	Type       StoreEventType    `json:"type"`
	CreatorID  string            `json:"creator_id"`
	ProductID  string            `json:"product_id,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishStoreEvent publishes a store event for downstream consumers
	PublishStoreEvent(ctx context.Context, event *StoreEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
