package entity

import (
	"strings"

	"coursecraft/internal/errors"
)

// User is a storefront account. Exactly one role is held, and only the
// profile matching that role is populated.
type User struct {
	ID           string `json:"id"`    // Stable account identifier.
	Name         string `json:"name"`  // Display name.
	Email        string `json:"email"` // Login identifier, compared case-insensitively.
	PasswordHash string `json:"-"`     // bcrypt hash, never serialised.
	Role         Role   `json:"role"`

	*CreatorProfile   // Non-nil only for creators.
	*AffiliateProfile // Non-nil only for affiliates.
}

// CreatorProfile holds the creator-only attributes.
type CreatorProfile struct {
	Bio              string            `json:"bio,omitempty"`
	DefaultCurrency  Currency          `json:"defaultCurrency,omitempty"`
	StoreBranding    StoreBranding     `json:"storeBranding"`
	PayoutDetails    *PayoutDetails    `json:"payoutDetails,omitempty"`
	AffiliateProgram *AffiliateProgram `json:"affiliateProgram,omitempty"`
	LandingPage      *LandingPage      `json:"landingPage,omitempty"`
}

// AffiliateProfile holds the affiliate-only attributes.
type AffiliateProfile struct {
	AffiliateID string `json:"affiliateId"` // Public referral code used in links.
}

type StoreBranding struct {
	PrimaryColor string `json:"primaryColor"`
	LogoURL      string `json:"logoUrl,omitempty"`
}

type PayoutDetails struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
}

// AffiliateProgram describes a creator's referral commission terms.
type AffiliateProgram struct {
	Enabled        bool    `json:"enabled"`
	CommissionRate float64 `json:"commissionRate"` // Percentage of the sale amount.
}

const (
	DefaultPrimaryColor   = "#06B6D4"
	DefaultCommissionRate = 20
)

// NormalizeEmail lowers and trims an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail reports whether two emails match case-insensitively.
func (u *User) SameEmail(email string) bool {
	return NormalizeEmail(u.Email) == NormalizeEmail(email)
}

// IsCreator reports whether the user holds the creator role.
func (u *User) IsCreator() bool {
	return u.Role == RoleCreator && u.CreatorProfile != nil
}

// Validate checks the one-role invariant.
func (u *User) Validate() error {
	if !u.Role.IsValid() {
		return errors.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}

	switch u.Role {
	case RoleCreator:
		if u.CreatorProfile == nil || u.AffiliateProfile != nil {
			return errors.Errorf("creator %s must carry only a creator profile", u.ID)
		}
	case RoleAffiliate:
		if u.AffiliateProfile == nil || u.CreatorProfile != nil {
			return errors.Errorf("affiliate %s must carry only an affiliate profile", u.ID)
		}
	case RoleStudent:
		if u.CreatorProfile != nil || u.AffiliateProfile != nil {
			return errors.Errorf("student %s must not carry role profiles", u.ID)
		}
	}

	return nil
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	out := *u
	if u.CreatorProfile != nil {
		cp := *u.CreatorProfile
		if cp.PayoutDetails != nil {
			pd := *cp.PayoutDetails
			cp.PayoutDetails = &pd
		}
		if cp.AffiliateProgram != nil {
			ap := *cp.AffiliateProgram
			cp.AffiliateProgram = &ap
		}
		cp.LandingPage = cp.LandingPage.Clone()
		out.CreatorProfile = &cp
	}
	if u.AffiliateProfile != nil {
		ap := *u.AffiliateProfile
		out.AffiliateProfile = &ap
	}

	return &out
}

// CommissionRate returns the creator's active commission percentage, or zero
// when the program is disabled.
func (p *CreatorProfile) CommissionRate() float64 {
	if p == nil || p.AffiliateProgram == nil || !p.AffiliateProgram.Enabled {
		return 0
	}

	return p.AffiliateProgram.CommissionRate
}
