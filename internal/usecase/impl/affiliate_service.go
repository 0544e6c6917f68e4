package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/config"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/analytics"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// affiliateService implements the AffiliateUsecase interface.
type affiliateService struct {
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	affiliateRepo repository.AffiliateRepository
	qrService     service.QRCodeService
	publisher     service.EventPublisher
	storeBaseURL  string
	now           func() time.Time
	logger        *slog.Logger
}

// AffiliateServiceParams holds dependencies for AffiliateService, injected by Fx.
type AffiliateServiceParams struct {
	fx.In

	UserRepo      repository.UserRepository
	ProductRepo   repository.ProductRepository
	AffiliateRepo repository.AffiliateRepository
	QRService     service.QRCodeService
	Publisher     service.EventPublisher
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAffiliateService is the constructor for affiliateService.
func NewAffiliateService(params AffiliateServiceParams) usecase.AffiliateUsecase {
	var baseURL string
	if params.Config != nil && params.Config.Store != nil {
		baseURL = params.Config.Store.BaseURL
	}

	return &affiliateService{
		userRepo:      params.UserRepo,
		productRepo:   params.ProductRepo,
		affiliateRepo: params.AffiliateRepo,
		qrService:     params.QRService,
		publisher:     params.Publisher,
		storeBaseURL:  baseURL,
		now:           time.Now,
		logger:        params.Logger,
	}
}

func (srv *affiliateService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Dashboard returns the affiliate's clicks, earnings and open programs.
func (srv *affiliateService) Dashboard(ctx context.Context, affiliateUserID string) (*usecase.AffiliateDashboard, error) {
	affiliate, err := srv.findAffiliate(ctx, affiliateUserID)
	if err != nil {
		return nil, err
	}

	clicks, err := srv.affiliateRepo.ListClicks(ctx, affiliate.AffiliateID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clicks")
	}
	sales, err := srv.affiliateRepo.ListSales(ctx, affiliate.AffiliateID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list affiliate sales")
	}

	products, err := srv.productRepo.ListByIDs(ctx, referencedProducts(clicks, sales))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	creators, err := srv.userRepo.ListByRole(ctx, entity.RoleCreator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list creators")
	}
	programs := make([]usecase.ProgramOffer, 0, len(creators))
	for _, c := range creators {
		if rate := c.CreatorProfile.CommissionRate(); rate > 0 {
			programs = append(programs, usecase.ProgramOffer{
				CreatorID:      c.ID,
				CreatorName:    c.Name,
				CommissionRate: rate,
			})
		}
	}

	return &usecase.AffiliateDashboard{
		AffiliateSummary: analytics.SummarizeAffiliate(clicks, sales, products),
		AffiliateID:      affiliate.AffiliateID,
		Programs:         programs,
	}, nil
}

// CreateLink builds a referral link to a creator's store or product.
func (srv *affiliateService) CreateLink(ctx context.Context, affiliateUserID, creatorID, productID string) (*usecase.AffiliateLink, error) {
	affiliate, err := srv.findAffiliate(ctx, affiliateUserID)
	if err != nil {
		return nil, err
	}

	creator, err := findCreator(ctx, srv.userRepo, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.CommissionRate() <= 0 {
		return nil, domainerrors.ErrAffiliateProgramDisabled
	}

	if productID != "" {
		product, err := srv.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, mapProductError(err)
		}
		if product.CreatorID != creatorID {
			return nil, domainerrors.ErrProductNotFound
		}
	}

	return &usecase.AffiliateLink{
		CreatorID: creatorID,
		ProductID: productID,
		URL:       analytics.ReferralLink(srv.storeBaseURL, creatorID, productID, affiliate.AffiliateID),
	}, nil
}

// LinkQRCode renders the referral link as a PNG.
func (srv *affiliateService) LinkQRCode(ctx context.Context, affiliateUserID, creatorID, productID string) ([]byte, error) {
	link, err := srv.CreateLink(ctx, affiliateUserID, creatorID, productID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrService.GenerateReferralQR(link.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate QR code")
	}

	return png, nil
}

// TrackClick records a visit through a referral link.
func (srv *affiliateService) TrackClick(ctx context.Context, referralCode, creatorID, productID string) error {
	if referralCode == "" {
		return nil
	}

	if _, err := srv.userRepo.FindByAffiliateID(ctx, referralCode); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Unknown referral code ignored", slog.String("ref", referralCode))

			return nil
		}

		return errors.Wrap(err, "failed to find affiliate")
	}

	creator, err := srv.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		return mapUserError(err)
	}
	if creator.CreatorProfile.CommissionRate() <= 0 {
		return nil
	}

	click := entity.AffiliateClick{
		ID:          entity.NewID(),
		AffiliateID: referralCode,
		Date:        srv.now().UTC(),
	}
	if productID != "" {
		click.ProductID = &productID
	}

	if err := srv.affiliateRepo.RecordClick(ctx, click); err != nil {
		return errors.Wrap(err, "failed to record click")
	}

	srv.log(ctx).Info("Referral click recorded", slog.String("ref", referralCode), slog.String("creator_id", creatorID))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:       service.EventAffiliateClick,
		CreatorID:  creatorID,
		ProductID:  productID,
		Attributes: map[string]string{"affiliate_id": referralCode},
	})

	return nil
}

func (srv *affiliateService) findAffiliate(ctx context.Context, userID string) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}
	if user.Role != entity.RoleAffiliate || user.AffiliateProfile == nil {
		return nil, domainerrors.ErrForbidden.WithDetails("affiliate role required")
	}

	return user, nil
}

func referencedProducts(clicks []entity.AffiliateClick, sales []entity.AffiliateSale) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range clicks {
		if c.ProductID != nil {
			add(*c.ProductID)
		}
	}
	for _, s := range sales {
		add(s.ProductID)
	}

	return ids
}
