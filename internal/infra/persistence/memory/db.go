// Package memory contains the in-process implementation of the persistence layer.
// Every record lives in a single guarded dataset that is seeded at startup and
// discarded on shutdown.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/fx"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/shell"
)

// dataset is everything the store holds. Slices are kept newest first where
// the domain defines an order.
type dataset struct {
	users          []*entity.User
	products       []*entity.Product
	sales          []entity.Sale
	clicks         []entity.AffiliateClick
	affiliateSales []entity.AffiliateSale
	notifications  []entity.Notification
	progress       map[string]*entity.CourseProgress
	sessions       map[string]*shell.Session
}

func newDataset() *dataset {
	return &dataset{
		progress: make(map[string]*entity.CourseProgress),
		sessions: make(map[string]*shell.Session),
	}
}

// clone deep copies the mutable records so a failed transaction can be undone.
func (d *dataset) clone() *dataset {
	out := &dataset{
		users:          make([]*entity.User, len(d.users)),
		products:       make([]*entity.Product, len(d.products)),
		sales:          append([]entity.Sale(nil), d.sales...),
		clicks:         append([]entity.AffiliateClick(nil), d.clicks...),
		affiliateSales: append([]entity.AffiliateSale(nil), d.affiliateSales...),
		notifications:  append([]entity.Notification(nil), d.notifications...),
		progress:       make(map[string]*entity.CourseProgress, len(d.progress)),
		sessions:       make(map[string]*shell.Session, len(d.sessions)),
	}
	for i, u := range d.users {
		out.users[i] = u.Clone()
	}
	for i, p := range d.products {
		out.products[i] = p.Clone()
	}
	for k, p := range d.progress {
		out.progress[k] = cloneProgress(p)
	}
	for k, s := range d.sessions {
		cp := *s
		out.sessions[k] = &cp
	}

	return out
}

// accessor hands the dataset to repository code under the right lock.
type accessor interface {
	read(fn func(d *dataset))
	write(fn func(d *dataset) error) error
}

// DB is the shared in-memory store.
type DB struct {
	mu   sync.RWMutex
	data *dataset
}

func (db *DB) read(fn func(d *dataset)) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	fn(db.data)
}

func (db *DB) write(fn func(d *dataset) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return fn(db.data)
}

// txAccessor is used inside Execute, where the write lock is already held.
type txAccessor struct {
	data *dataset
}

func (tx txAccessor) read(fn func(d *dataset))             { fn(tx.data) }
func (tx txAccessor) write(fn func(d *dataset) error) error { return fn(tx.data) }

// Params defines the dependencies of the store.
type Params struct {
	fx.In

	Hasher service.PasswordHasher
	Logger *slog.Logger
}

// NewDB creates the store and loads the demo dataset.
func NewDB(params Params) (*DB, error) {
	return newSeededDB(context.Background(), params.Hasher, params.Logger, time.Now())
}

func newSeededDB(ctx context.Context, hasher service.PasswordHasher, logger *slog.Logger, now time.Time) (*DB, error) {
	data, err := loadSeed(hasher, now)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "In-memory store seeded",
		slog.Int("users", len(data.users)),
		slog.Int("products", len(data.products)),
		slog.Int("sales", len(data.sales)),
	)

	return &DB{data: data}, nil
}

// NewEmptyDB returns a store without seed data.
func NewEmptyDB() *DB {
	return &DB{data: newDataset()}
}

func progressKey(userID, productID string) string {
	return userID + "/" + productID
}

func cloneProgress(p *entity.CourseProgress) *entity.CourseProgress {
	out := *p
	out.Completed = make(map[string]bool, len(p.Completed))
	for k, v := range p.Completed {
		out.Completed[k] = v
	}

	return &out
}

// Module provides the in-memory repositories
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewDB,
		NewTransactionManager,
		NewUserRepository,
		NewProductRepository,
		NewSaleRepository,
		NewAffiliateRepository,
		NewNotificationRepository,
		NewProgressRepository,
		NewSessionRepository,
		NewTemplateRepository,
	),
)
