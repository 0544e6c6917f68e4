package service

// QRCodeService renders referral links as scannable images.
type QRCodeService interface {
	// GenerateReferralQR encodes link into a PNG QR code.
	GenerateReferralQR(link string) ([]byte, error)

	// ParseReferralQR extracts the referral target from scanned QR content.
	ParseReferralQR(qrData string) (*ReferralTarget, error)
}

// ReferralTarget is what a referral link points at.
type ReferralTarget struct {
	CreatorID   string
	ProductID   string // Empty for storefront links.
	AffiliateID string
}
