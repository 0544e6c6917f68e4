package analytics

import (
	"net/url"
	"sort"
	"time"

	"coursecraft/internal/domain/entity"
)

const recentActivityLimit = 10

// ActivityKind tells clicks and sales apart in the activity feed.
type ActivityKind string

const (
	ActivityClick ActivityKind = "Click"
	ActivitySale  ActivityKind = "Sale"
)

// Activity is one entry of an affiliate's recent activity feed.
type Activity struct {
	Kind             ActivityKind    `json:"type"`
	ProductID        string          `json:"productId,omitempty"`
	ProductName      string          `json:"productName,omitempty"`
	SaleAmount       float64         `json:"saleAmount,omitempty"`
	CommissionAmount float64         `json:"commissionAmount,omitempty"`
	Currency         entity.Currency `json:"currency,omitempty"`
	Date             time.Time       `json:"date"`
}

// AffiliateSummary is the affiliate dashboard overview.
type AffiliateSummary struct {
	TotalClicks    int                         `json:"totalClicks"`
	TotalSales     int                         `json:"totalSales"`
	Earnings       map[entity.Currency]float64 `json:"earnings"`
	RecentActivity []Activity                  `json:"recentActivity"`
}

// SummarizeAffiliate merges clicks and sales into the dashboard figures.
// Earnings stay split by currency; the activity feed is newest first.
func SummarizeAffiliate(clicks []entity.AffiliateClick, sales []entity.AffiliateSale, products []*entity.Product) AffiliateSummary {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	earnings := make(map[entity.Currency]float64)
	feed := make([]Activity, 0, len(clicks)+len(sales))

	for _, c := range clicks {
		a := Activity{Kind: ActivityClick, Date: c.Date}
		if c.ProductID != nil {
			a.ProductID = *c.ProductID
			a.ProductName = names[*c.ProductID]
		}
		feed = append(feed, a)
	}
	for _, s := range sales {
		earnings[s.Currency] += s.CommissionAmount
		feed = append(feed, Activity{
			Kind:             ActivitySale,
			ProductID:        s.ProductID,
			ProductName:      names[s.ProductID],
			SaleAmount:       s.SaleAmount,
			CommissionAmount: s.CommissionAmount,
			Currency:         s.Currency,
			Date:             s.Date,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	if len(feed) > recentActivityLimit {
		feed = feed[:recentActivityLimit]
	}

	return AffiliateSummary{
		TotalClicks:    len(clicks),
		TotalSales:     len(sales),
		Earnings:       earnings,
		RecentActivity: feed,
	}
}

// ReferralLink builds the tracked link for a creator's storefront, or for one
// of their products when productID is set.
func ReferralLink(storeBaseURL, creatorID, productID, affiliateID string) string {
	link := storeBaseURL + "/store/" + url.PathEscape(creatorID)
	if productID != "" {
		link += "/products/" + url.PathEscape(productID)
	}

	return link + "?ref=" + url.QueryEscape(affiliateID)
}

// Commission returns the affiliate's share of a sale amount.
func Commission(amount, ratePercent float64) float64 {
	return amount * ratePercent / 100
}
