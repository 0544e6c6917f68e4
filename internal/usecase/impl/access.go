package impl

import (
	"context"

	"github.com/pkg/errors"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
)

func mapUserError(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound
	}

	return errors.Wrap(err, "failed to find user")
}

func mapProductError(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return domainerrors.ErrProductNotFound
	}

	return errors.Wrap(err, "failed to find product")
}

// findCreator loads a user and checks that they hold the creator role.
func findCreator(ctx context.Context, users repository.UserRepository, creatorID string) (*entity.User, error) {
	user, err := users.FindByID(ctx, creatorID)
	if err != nil {
		return nil, mapUserError(err)
	}
	if !user.IsCreator() {
		return nil, domainerrors.ErrForbidden.WithDetails("creator role required")
	}

	return user, nil
}

// findOwnedProduct loads a product and checks it belongs to creatorID.
func findOwnedProduct(ctx context.Context, products repository.ProductRepository, creatorID, productID string) (*entity.Product, error) {
	product, err := products.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductError(err)
	}
	if product.CreatorID != creatorID {
		return nil, domainerrors.ErrProductOwnership
	}

	return product, nil
}

// hasPurchased reports whether userID bought productID.
func hasPurchased(ctx context.Context, sales repository.SaleRepository, userID, productID string) (bool, error) {
	bought, err := sales.ListByStudent(ctx, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to list purchases")
	}
	for _, s := range bought {
		if s.ProductID == productID {
			return true, nil
		}
	}

	return false, nil
}

// canView allows the product's creator and its buyers.
func canView(ctx context.Context, sales repository.SaleRepository, userID string, product *entity.Product) error {
	if product.CreatorID == userID {
		return nil
	}

	ok, err := hasPurchased(ctx, sales, userID, product.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrNotPurchased
	}

	return nil
}
