// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/shell"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when creating a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrProductNotFound is returned when no product matches the id.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotificationNotFound is returned when the notification does not exist for the user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrTemplateNotFound is returned for unknown landing page templates.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrSessionNotFound is returned when a shell session does not exist.
	ErrSessionNotFound = errors.New("shell session not found")
)

// UserRepository stores users of every role.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByEmail matches the email case-insensitively.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByAffiliateID retrieves the affiliate owning a referral id.
	FindByAffiliateID(ctx context.Context, affiliateID string) (*entity.User, error)

	// ListByRole returns users of one role in insertion order.
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)

	// Create appends a new user. It fails with ErrDuplicateEmail when the
	// email is already registered.
	Create(ctx context.Context, user *entity.User) error

	// Update replaces an existing user.
	Update(ctx context.Context, user *entity.User) error
}

// ProductRepository stores products, newest first.
type ProductRepository interface {
	// FindByID retrieves a single product.
	FindByID(ctx context.Context, id string) (*entity.Product, error)

	// ListByCreator returns a creator's products in display order.
	ListByCreator(ctx context.Context, creatorID string) ([]*entity.Product, error)

	// ListByIDs returns the products that still exist among ids, in ids order.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)

	// Upsert replaces the product with the same id in place, or puts a new
	// product at the front of the list.
	Upsert(ctx context.Context, product *entity.Product) error

	// Delete removes a product. Sales referencing it are left untouched.
	Delete(ctx context.Context, id string) error
}

// SaleRepository stores the append-only purchase log.
type SaleRepository interface {
	// List returns every sale, newest first.
	List(ctx context.Context) ([]entity.Sale, error)

	// ListByProducts returns the sales of any of the given products.
	ListByProducts(ctx context.Context, productIDs []string) ([]entity.Sale, error)

	// ListByCreator returns the sales of a creator's products, including
	// products deleted since.
	ListByCreator(ctx context.Context, creatorID string) ([]entity.Sale, error)

	// ListByStudent returns a student's purchases.
	ListByStudent(ctx context.Context, studentID string) ([]entity.Sale, error)

	// Create records a sale at the front of the log.
	Create(ctx context.Context, sale entity.Sale) error
}

// AffiliateRepository stores referral clicks and attributed sales.
type AffiliateRepository interface {
	RecordClick(ctx context.Context, click entity.AffiliateClick) error
	RecordSale(ctx context.Context, sale entity.AffiliateSale) error
	ListClicks(ctx context.Context, affiliateID string) ([]entity.AffiliateClick, error)
	ListSales(ctx context.Context, affiliateID string) ([]entity.AffiliateSale, error)
}

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.Notification, error)

	Create(ctx context.Context, n entity.Notification) error

	// MarkRead flags one of the user's notifications as read.
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead flags every notification of the user as read.
	MarkAllRead(ctx context.Context, userID string) error
}

// ProgressRepository stores course completion per student and product.
type ProgressRepository interface {
	// Get returns the stored progress or an empty record.
	Get(ctx context.Context, userID, productID string) (*entity.CourseProgress, error)

	Save(ctx context.Context, progress *entity.CourseProgress) error
}

// Template is a named starting point for a landing page.
type Template struct {
	ID   string              `json:"id"`
	Name string              `json:"name"`
	Page *entity.LandingPage `json:"page"`
}

// TemplateRepository serves the built-in landing page templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]Template, error)

	// FindByID returns a copy of the template page.
	FindByID(ctx context.Context, id string) (*entity.LandingPage, error)
}

// SessionRepository stores shell sessions.
type SessionRepository interface {
	Find(ctx context.Context, id string) (*shell.Session, error)
	Save(ctx context.Context, s *shell.Session) error
	Delete(ctx context.Context, id string) error
}
