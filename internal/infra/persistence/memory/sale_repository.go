package memory

import (
	"context"
	"slices"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
)

// saleRepository implements repository.SaleRepository over the purchase log.
type saleRepository struct {
	store accessor
}

// NewSaleRepository is the constructor for saleRepository.
func NewSaleRepository(db *DB) repository.SaleRepository {
	return &saleRepository{store: db}
}

// List returns every sale, newest first.
func (repo *saleRepository) List(_ context.Context) ([]entity.Sale, error) {
	var out []entity.Sale
	repo.store.read(func(d *dataset) {
		out = slices.Clone(d.sales)
	})

	return out, nil
}

// ListByProducts returns the sales of any of the given products.
func (repo *saleRepository) ListByProducts(_ context.Context, productIDs []string) ([]entity.Sale, error) {
	wanted := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}

	return repo.filter(func(s entity.Sale) bool {
		_, ok := wanted[s.ProductID]
		return ok
	}), nil
}

// ListByCreator returns the sales of a creator's products, deleted ones included.
func (repo *saleRepository) ListByCreator(_ context.Context, creatorID string) ([]entity.Sale, error) {
	return repo.filter(func(s entity.Sale) bool { return s.CreatorID == creatorID }), nil
}

// ListByStudent returns a student's purchases.
func (repo *saleRepository) ListByStudent(_ context.Context, studentID string) ([]entity.Sale, error) {
	return repo.filter(func(s entity.Sale) bool { return s.StudentID == studentID }), nil
}

// Create records a sale at the front of the log.
func (repo *saleRepository) Create(_ context.Context, sale entity.Sale) error {
	return repo.store.write(func(d *dataset) error {
		d.sales = append([]entity.Sale{sale}, d.sales...)

		return nil
	})
}

func (repo *saleRepository) filter(keep func(s entity.Sale) bool) []entity.Sale {
	out := make([]entity.Sale, 0)
	repo.store.read(func(d *dataset) {
		for _, s := range d.sales {
			if keep(s) {
				out = append(out, s)
			}
		}
	})

	return out
}

// affiliateRepository implements repository.AffiliateRepository.
type affiliateRepository struct {
	store accessor
}

// NewAffiliateRepository is the constructor for affiliateRepository.
func NewAffiliateRepository(db *DB) repository.AffiliateRepository {
	return &affiliateRepository{store: db}
}

func (repo *affiliateRepository) RecordClick(_ context.Context, click entity.AffiliateClick) error {
	return repo.store.write(func(d *dataset) error {
		d.clicks = append([]entity.AffiliateClick{click}, d.clicks...)

		return nil
	})
}

func (repo *affiliateRepository) RecordSale(_ context.Context, sale entity.AffiliateSale) error {
	return repo.store.write(func(d *dataset) error {
		d.affiliateSales = append([]entity.AffiliateSale{sale}, d.affiliateSales...)

		return nil
	})
}

func (repo *affiliateRepository) ListClicks(_ context.Context, affiliateID string) ([]entity.AffiliateClick, error) {
	out := make([]entity.AffiliateClick, 0)
	repo.store.read(func(d *dataset) {
		for _, c := range d.clicks {
			if c.AffiliateID == affiliateID {
				out = append(out, c)
			}
		}
	})

	return out, nil
}

func (repo *affiliateRepository) ListSales(_ context.Context, affiliateID string) ([]entity.AffiliateSale, error) {
	out := make([]entity.AffiliateSale, 0)
	repo.store.read(func(d *dataset) {
		for _, s := range d.affiliateSales {
			if s.AffiliateID == affiliateID {
				out = append(out, s)
			}
		}
	})

	return out, nil
}
