package usecase

import (
	"context"

	"coursecraft/internal/domain/entity"
)

// SettingsUpdate carries the creator settings to change. Nil fields are untouched.
type SettingsUpdate struct {
	Name             *string                  `json:"name" validate:"omitempty,min=1,max=100"`
	Bio              *string                  `json:"bio" validate:"omitempty,max=1000"`
	DefaultCurrency  *entity.Currency         `json:"defaultCurrency" validate:"omitempty,oneof=USD NGN"`
	StoreBranding    *entity.StoreBranding    `json:"storeBranding"`
	PayoutDetails    *entity.PayoutDetails    `json:"payoutDetails"`
	AffiliateProgram *entity.AffiliateProgram `json:"affiliateProgram"`
}

// SettingsUsecase reads and updates a creator's profile.
type SettingsUsecase interface {
	Get(ctx context.Context, creatorID string) (*entity.User, error)
	Update(ctx context.Context, creatorID string, update SettingsUpdate) (*entity.User, error)
}
