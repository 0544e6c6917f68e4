package entity

import "time"

// Sale is an append-only purchase record.
type Sale struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creatorId"` // Owner of the product when it was sold.
	ProductID string    `json:"productId"` // May reference a product that no longer exists.
	StudentID string    `json:"studentId"`
	Amount    float64   `json:"amount"`
	Currency  Currency  `json:"currency"`
	Date      time.Time `json:"date"`
}

// AffiliateClick is a visit through a referral link.
type AffiliateClick struct {
	ID          string    `json:"id"`
	AffiliateID string    `json:"affiliateId"`
	ProductID   *string   `json:"productId"` // Nil for store-wide links.
	Date        time.Time `json:"date"`
}

// AffiliateSale is a purchase attributed to an affiliate.
type AffiliateSale struct {
	ID               string    `json:"id"`
	AffiliateID      string    `json:"affiliateId"`
	ProductID        string    `json:"productId"`
	SaleAmount       float64   `json:"saleAmount"`
	CommissionAmount float64   `json:"commissionAmount"`
	Currency         Currency  `json:"currency"`
	Date             time.Time `json:"date"`
}

// NotificationType classifies creator notifications.
type NotificationType string

const (
	NotificationSale      NotificationType = "sale"
	NotificationReview    NotificationType = "review"
	NotificationMilestone NotificationType = "milestone"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID      string           `json:"id"`
	UserID  string           `json:"userId"`
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
}

// CourseProgress tracks which lessons a student has completed in a product.
type CourseProgress struct {
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	Completed map[string]bool `json:"completed"` // Keyed by lesson id.
	UpdatedAt time.Time       `json:"updatedAt"`
}
