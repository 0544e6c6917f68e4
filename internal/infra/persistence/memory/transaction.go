package memory

import (
	"context"

	"coursecraft/internal/domain/repository"
)

// transactionManager implements repository.TransactionManager by holding the
// write lock for the whole callback and restoring a snapshot on failure.
type transactionManager struct {
	db *DB
}

// repositoryFactory builds repositories bound to one transaction.
type repositoryFactory struct {
	tx txAccessor
}

func (f *repositoryFactory) NewUserRepository() repository.UserRepository {
	return &userRepository{store: f.tx}
}

func (f *repositoryFactory) NewProductRepository() repository.ProductRepository {
	return &productRepository{store: f.tx}
}

func (f *repositoryFactory) NewSaleRepository() repository.SaleRepository {
	return &saleRepository{store: f.tx}
}

func (f *repositoryFactory) NewAffiliateRepository() repository.AffiliateRepository {
	return &affiliateRepository{store: f.tx}
}

func (f *repositoryFactory) NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{store: f.tx}
}

// NewTransactionManager is the constructor for transactionManager.
func NewTransactionManager(db *DB) repository.TransactionManager {
	return &transactionManager{db: db}
}

// Execute runs fn with exclusive access to the store. Repositories created
// outside fn must not be used from inside it.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.db.mu.Lock()
	defer tm.db.mu.Unlock()

	snapshot := tm.db.data.clone()

	defer func() {
		if r := recover(); r != nil {
			tm.db.data = snapshot
			panic(r)
		}
	}()

	if err = fn(&repositoryFactory{tx: txAccessor{data: tm.db.data}}); err != nil {
		tm.db.data = snapshot

		return err
	}

	return nil
}
