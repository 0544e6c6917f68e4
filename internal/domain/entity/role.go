// Package entity contains the core business objects of the storefront.
package entity

// Role represents the single capability set a user holds.
type Role string

const (
	// RoleCreator owns products and a storefront.
	RoleCreator Role = "creator"
	// RoleStudent purchases and consumes products.
	RoleStudent Role = "student"
	// RoleAffiliate earns commission through referral links.
	RoleAffiliate Role = "affiliate"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleCreator, RoleStudent, RoleAffiliate:
		return true
	default:
		return false
	}
}

// Currency tags every money amount.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyNGN Currency = "NGN"
)

// IsValid checks if the Currency is supported.
func (c Currency) IsValid() bool {
	return c == CurrencyUSD || c == CurrencyNGN
}

// AspectRatio is a supported image aspect ratio, written "W:H".
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectTall      AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// IsValid checks if the ratio is one the gateway and the cropper accept.
func (a AspectRatio) IsValid() bool {
	switch a {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectTall, AspectWide:
		return true
	default:
		return false
	}
}

// Dimensions returns the ratio's width and height terms.
func (a AspectRatio) Dimensions() (w, h int) {
	switch a {
	case AspectSquare:
		return 1, 1
	case AspectPortrait:
		return 3, 4
	case AspectTall:
		return 9, 16
	case AspectWide:
		return 16, 9
	default:
		return 4, 3
	}
}
