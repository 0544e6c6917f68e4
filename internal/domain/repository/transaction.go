package repository

import "context"

// TransactionManager runs several repository calls as one unit.
// This allows the use case layer to keep check-then-write sequences atomic
// without depending on a specific store.
type TransactionManager interface {
	// Execute runs a function within a transaction.
	// If the function returns an error, every change it made is rolled back.
	// All repository operations within the function must use the given factory.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to a specific transaction.
type RepositoryFactory interface {
	NewUserRepository() UserRepository
	NewProductRepository() ProductRepository
	NewSaleRepository() SaleRepository
	NewAffiliateRepository() AffiliateRepository
	NewNotificationRepository() NotificationRepository
}
