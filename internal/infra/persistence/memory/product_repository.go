package memory

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
)

// productRepository implements repository.ProductRepository.
type productRepository struct {
	store accessor
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{store: db}
}

// FindByID retrieves a single product.
func (repo *productRepository) FindByID(_ context.Context, id string) (*entity.Product, error) {
	var found *entity.Product
	repo.store.read(func(d *dataset) {
		if i := indexOfProduct(d.products, id); i >= 0 {
			found = d.products[i].Clone()
		}
	})
	if found == nil {
		return nil, repository.ErrProductNotFound
	}

	return found, nil
}

// ListByCreator returns a creator's products, newest first.
func (repo *productRepository) ListByCreator(_ context.Context, creatorID string) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0)
	repo.store.read(func(d *dataset) {
		for _, p := range d.products {
			if p.CreatorID == creatorID {
				out = append(out, p.Clone())
			}
		}
	})

	return out, nil
}

// ListByIDs returns the products that still exist among ids, in ids order.
func (repo *productRepository) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(ids))
	repo.store.read(func(d *dataset) {
		for _, id := range ids {
			if i := indexOfProduct(d.products, id); i >= 0 {
				out = append(out, d.products[i].Clone())
			}
		}
	})

	return out, nil
}

// Upsert replaces a product in place, or puts a new one at the front.
func (repo *productRepository) Upsert(_ context.Context, product *entity.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	return repo.store.write(func(d *dataset) error {
		if i := indexOfProduct(d.products, product.ID); i >= 0 {
			d.products[i] = product.Clone()

			return nil
		}
		d.products = append([]*entity.Product{product.Clone()}, d.products...)

		return nil
	})
}

// Delete removes a product. Sales referencing it are left untouched.
func (repo *productRepository) Delete(_ context.Context, id string) error {
	return repo.store.write(func(d *dataset) error {
		i := indexOfProduct(d.products, id)
		if i < 0 {
			return repository.ErrProductNotFound
		}
		d.products = append(d.products[:i:i], d.products[i+1:]...)

		return nil
	})
}

func indexOfProduct(products []*entity.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}

	return -1
}
