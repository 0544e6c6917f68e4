package impl

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/landing"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// storefrontService implements the StorefrontUsecase interface.
type storefrontService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	objects     service.ObjectStore
	renderer    *landing.Renderer
	logger      *slog.Logger
}

// StorefrontServiceParams holds dependencies for StorefrontService, injected by Fx.
type StorefrontServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	Objects     service.ObjectStore
	Renderer    *landing.Renderer
	Logger      *slog.Logger
}

// NewStorefrontService is the constructor for storefrontService.
func NewStorefrontService(params StorefrontServiceParams) usecase.StorefrontUsecase {
	return &storefrontService{
		userRepo:    params.UserRepo,
		productRepo: params.ProductRepo,
		objects:     params.Objects,
		renderer:    params.Renderer,
		logger:      params.Logger,
	}
}

func (srv *storefrontService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RenderStore writes the creator's saved landing page.
func (srv *storefrontService) RenderStore(ctx context.Context, w io.Writer, creatorID string) error {
	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return storeNotFound(err)
	}

	products, err := srv.productRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return errors.Wrap(err, "failed to list products")
	}

	srv.log(ctx).Debug("Rendering storefront", slog.String("creator_id", creatorID), slog.Int("products", len(products)))

	return srv.renderer.Render(w, landing.View{
		StoreName: creator.Name,
		CreatorID: creator.ID,
		Branding:  creator.StoreBranding,
		Currency:  creator.DefaultCurrency,
		Page:      creator.LandingPage,
		Products:  products,
	})
}

// RenderProduct writes one of the creator's products.
func (srv *storefrontService) RenderProduct(ctx context.Context, w io.Writer, creatorID, productID string) error {
	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return storeNotFound(err)
	}

	product, err := findOwnedProduct(ctx, srv.productRepo, creatorID, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrProductOwnership) {
			return domainerrors.ErrProductNotFound
		}

		return err
	}

	return srv.renderer.RenderProduct(w, landing.ProductView{
		StoreName: creator.Name,
		CreatorID: creator.ID,
		Branding:  creator.StoreBranding,
		Product:   product,
	})
}

// OpenUpload streams an upload by key.
func (srv *storefrontService) OpenUpload(ctx context.Context, key string) (io.ReadCloser, *service.ObjectInfo, error) {
	return srv.objects.Open(ctx, key)
}

// storeNotFound hides whether an id belongs to a non-creator account.
func storeNotFound(err error) error {
	if errors.Is(err, domainerrors.ErrForbidden) || errors.Is(err, domainerrors.ErrUserNotFound) {
		return domainerrors.ErrNotFound.WithMessage("Store not found.")
	}

	return err
}
