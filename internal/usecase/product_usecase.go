package usecase

import (
	"context"

	"coursecraft/internal/domain/entity"
)

// ProductUsecase manages a creator's catalogue. New and edited products
// arrive through DraftUsecase.Commit.
type ProductUsecase interface {
	List(ctx context.Context, creatorID string) ([]*entity.Product, error)
	Get(ctx context.Context, creatorID, productID string) (*entity.Product, error)

	// Upsert replaces the product with the same id in place, or prepends it.
	Upsert(ctx context.Context, creatorID string, product *entity.Product) (*entity.Product, error)

	// Delete removes a product. Its sales stay in the log.
	Delete(ctx context.Context, creatorID, productID string) error
}
