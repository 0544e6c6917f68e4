package impl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// settingsService implements the SettingsUsecase interface.
type settingsService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	publisher service.EventPublisher
	logger    *slog.Logger
}

// SettingsServiceParams holds dependencies for SettingsService, injected by Fx.
type SettingsServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewSettingsService is the constructor for settingsService.
func NewSettingsService(params SettingsServiceParams) usecase.SettingsUsecase {
	return &settingsService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *settingsService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Get returns the creator's profile.
func (srv *settingsService) Get(ctx context.Context, creatorID string) (*entity.User, error) {
	return findCreator(ctx, srv.userRepo, creatorID)
}

// Update applies the non-nil fields of update to the creator's profile.
func (srv *settingsService) Update(ctx context.Context, creatorID string, update usecase.SettingsUpdate) (*entity.User, error) {
	if fields := validateSettings(update); len(fields) > 0 {
		return nil, domainerrors.NewValidationError(domainerrors.ErrValidationFailed, fields)
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		users := f.NewUserRepository()
		creator, err := findCreator(ctx, users, creatorID)
		if err != nil {
			return err
		}

		applySettings(creator, update)

		if err := users.Update(ctx, creator); err != nil {
			return errors.Wrap(err, "failed to update settings")
		}
		updated = creator

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Settings updated", slog.String("user_id", creatorID))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:      service.EventSettingsUpdated,
		CreatorID: creatorID,
		ActorID:   creatorID,
	})

	return updated, nil
}

func validateSettings(u usecase.SettingsUpdate) map[string]string {
	fields := make(map[string]string)
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		fields["name"] = "required"
	}
	if u.DefaultCurrency != nil && !u.DefaultCurrency.IsValid() {
		fields["defaultCurrency"] = "unsupported currency"
	}
	if u.AffiliateProgram != nil && (u.AffiliateProgram.CommissionRate < 0 || u.AffiliateProgram.CommissionRate > 100) {
		fields["affiliateProgram.commissionRate"] = "must be between 0 and 100"
	}

	return fields
}

func applySettings(creator *entity.User, u usecase.SettingsUpdate) {
	if u.Name != nil {
		creator.Name = strings.TrimSpace(*u.Name)
	}
	if u.Bio != nil {
		creator.Bio = *u.Bio
	}
	if u.DefaultCurrency != nil {
		creator.DefaultCurrency = *u.DefaultCurrency
	}
	if u.StoreBranding != nil {
		branding := *u.StoreBranding
		if branding.PrimaryColor == "" {
			branding.PrimaryColor = entity.DefaultPrimaryColor
		}
		creator.StoreBranding = branding
	}
	if u.PayoutDetails != nil {
		pd := *u.PayoutDetails
		creator.PayoutDetails = &pd
	}
	if u.AffiliateProgram != nil {
		ap := *u.AffiliateProgram
		creator.AffiliateProgram = &ap
	}
}
