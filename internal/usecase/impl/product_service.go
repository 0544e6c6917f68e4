package impl

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// productService implements the ProductUsecase interface.
type productService struct {
	txManager   repository.TransactionManager
	productRepo repository.ProductRepository
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProductRepo repository.ProductRepository
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		txManager:   params.TxManager,
		productRepo: params.ProductRepo,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns the creator's products in display order.
func (srv *productService) List(ctx context.Context, creatorID string) ([]*entity.Product, error) {
	products, err := srv.productRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

// Get returns one of the creator's products.
func (srv *productService) Get(ctx context.Context, creatorID, productID string) (*entity.Product, error) {
	return findOwnedProduct(ctx, srv.productRepo, creatorID, productID)
}

// Upsert saves a committed product. An existing product keeps its place in
// the list; a new one goes to the front.
func (srv *productService) Upsert(ctx context.Context, creatorID string, product *entity.Product) (*entity.Product, error) {
	if product == nil {
		return nil, domainerrors.ErrProductInvalid
	}
	if product.CreatorID != creatorID {
		return nil, domainerrors.ErrProductOwnership
	}
	if err := product.Validate(); err != nil {
		return nil, domainerrors.ErrProductInvalid.WithDetails(err.Error())
	}

	err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		products := f.NewProductRepository()

		existing, err := products.FindByID(ctx, product.ID)
		switch {
		case err == nil && existing.CreatorID != creatorID:
			return domainerrors.ErrProductOwnership
		case err != nil && !errors.Is(err, repository.ErrProductNotFound):
			return errors.Wrap(err, "failed to find product")
		}

		return errors.Wrap(products.Upsert(ctx, product), "failed to save product")
	})
	if err != nil {
		srv.log(ctx).Error("Failed to save product", slog.String("product_id", product.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Product saved", slog.String("product_id", product.ID), slog.String("type", string(product.Type())))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:       service.EventProductCommitted,
		CreatorID:  creatorID,
		ProductID:  product.ID,
		ActorID:    creatorID,
		Attributes: map[string]string{"product_name": product.Name},
	})

	return product, nil
}

// Delete removes one of the creator's products.
func (srv *productService) Delete(ctx context.Context, creatorID, productID string) error {
	err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		products := f.NewProductRepository()
		if _, err := findOwnedProduct(ctx, products, creatorID, productID); err != nil {
			return err
		}

		return errors.Wrap(products.Delete(ctx, productID), "failed to delete product")
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Product deleted", slog.String("product_id", productID))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:      service.EventProductDeleted,
		CreatorID: creatorID,
		ProductID: productID,
		ActorID:   creatorID,
	})

	return nil
}
