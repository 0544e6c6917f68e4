package usecase

import (
	"context"

	"coursecraft/internal/domain/analytics"
)

// AffiliateLink is a tracked referral link.
type AffiliateLink struct {
	CreatorID string `json:"creatorId"`
	ProductID string `json:"productId,omitempty"`
	URL       string `json:"url"`
}

// AffiliateDashboard is the affiliate overview.
type AffiliateDashboard struct {
	analytics.AffiliateSummary

	AffiliateID string         `json:"affiliateId"`
	Programs    []ProgramOffer `json:"programs"`
}

// ProgramOffer is a creator whose affiliate program is open.
type ProgramOffer struct {
	CreatorID      string  `json:"creatorId"`
	CreatorName    string  `json:"creatorName"`
	CommissionRate float64 `json:"commissionRate"`
}

// AffiliateUsecase serves affiliates and records referral traffic.
type AffiliateUsecase interface {
	Dashboard(ctx context.Context, affiliateUserID string) (*AffiliateDashboard, error)

	// CreateLink builds a referral link to a creator's store or one of their products.
	CreateLink(ctx context.Context, affiliateUserID, creatorID, productID string) (*AffiliateLink, error)

	// LinkQRCode renders a referral link as a PNG QR code.
	LinkQRCode(ctx context.Context, affiliateUserID, creatorID, productID string) ([]byte, error)

	// TrackClick records a storefront visit through a referral code. Unknown
	// codes and disabled programs are ignored.
	TrackClick(ctx context.Context, referralCode, creatorID, productID string) error
}
