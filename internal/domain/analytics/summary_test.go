package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func product(id, name string) *entity.Product {
	return &entity.Product{ID: id, Name: name, Currency: entity.CurrencyUSD, Content: entity.CoachingContent{}}
}

var weights = Weights{entity.CurrencyUSD: 1000, entity.CurrencyNGN: 1}

func TestSummarize_RevenueIsWeightedSum(t *testing.T) {
	sales := []entity.Sale{
		{ID: "s1", ProductID: "1", Amount: 50000, Currency: entity.CurrencyNGN, Date: date(2026, 3, 1)},
		{ID: "s2", ProductID: "2", Amount: 250, Currency: entity.CurrencyUSD, Date: date(2026, 3, 2)},
		{ID: "s3", ProductID: "5", Amount: 50, Currency: entity.CurrencyUSD, Date: date(2026, 2, 2)},
	}
	students := []*entity.User{{ID: "a"}, {ID: "b"}}

	got := Summarize(sales, []*entity.Product{product("1", "Figma"), product("2", "Pack")}, students, weights)

	assert.InDelta(t, 50000+250_000+50_000, got.TotalRevenue, 1e-9)
	assert.Equal(t, 2, got.TotalStudents)
	assert.Equal(t, 3, got.ProductsSold)
}

func TestSummarize_TopProductsOnlyFromGivenList(t *testing.T) {
	sales := []entity.Sale{
		{ProductID: "2", Date: date(2026, 1, 1)},
		{ProductID: "3", Date: date(2026, 1, 1)},
		{ProductID: "3", Date: date(2026, 1, 1)},
		{ProductID: "ghost", Date: date(2026, 1, 1)},
		{ProductID: "ghost", Date: date(2026, 1, 1)},
		{ProductID: "ghost", Date: date(2026, 1, 1)},
	}
	products := []*entity.Product{
		product("1", "One"), product("2", "Two"), product("3", "Three"),
		product("4", "Four"), product("5", "Five"), product("6", "Six"),
	}

	got := Summarize(sales, products, nil, weights).TopProducts

	require.Len(t, got, 5)
	assert.Equal(t, TopProduct{ProductID: "3", Name: "Three", Sales: 2}, got[0])
	assert.Equal(t, TopProduct{ProductID: "2", Name: "Two", Sales: 1}, got[1])
	assert.Equal(t, "1", got[2].ProductID)
	assert.Equal(t, 0, got[2].Sales)
	for _, p := range got {
		assert.NotEqual(t, "ghost", p.ProductID)
	}
}

func TestSummarize_MonthlySeriesKeepsLastFiveInSeenOrder(t *testing.T) {
	var sales []entity.Sale
	for m := time.June; m >= time.January; m-- {
		sales = append(sales, entity.Sale{Amount: float64(m), Currency: entity.CurrencyNGN, Date: date(2026, m, 3)})
	}
	sales = append(sales, entity.Sale{Amount: 100, Currency: entity.CurrencyUSD, Date: date(2026, time.June, 20)})

	got := Summarize(sales, nil, nil, weights).SalesByMonth

	require.Len(t, got, 5)
	labels := make([]string, len(got))
	for i, m := range got {
		labels[i] = m.Month
	}
	assert.Equal(t, []string{"May 26", "Apr 26", "Mar 26", "Feb 26", "Jan 26"}, labels)
	assert.InDelta(t, 5, got[0].Revenue, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, nil, nil, nil)

	assert.Zero(t, got.TotalRevenue)
	assert.Empty(t, got.TopProducts)
	assert.Empty(t, got.SalesByMonth)
}

func TestWeights_DefaultsToFaceValue(t *testing.T) {
	assert.Equal(t, 1.0, Weights{}.Weight(entity.CurrencyUSD))
	assert.Equal(t, 1000.0, weights.Weight(entity.CurrencyUSD))
}

func TestSummarizeAffiliate(t *testing.T) {
	p1 := "1"
	clicks := []entity.AffiliateClick{
		{ID: "c1", AffiliateID: "sam", ProductID: &p1, Date: date(2026, 3, 5)},
		{ID: "c2", AffiliateID: "sam", Date: date(2026, 3, 1)},
	}
	sales := []entity.AffiliateSale{
		{ID: "a1", ProductID: "1", SaleAmount: 50000, CommissionAmount: 15000, Currency: entity.CurrencyNGN, Date: date(2026, 3, 4)},
		{ID: "a2", ProductID: "2", SaleAmount: 250, CommissionAmount: 75, Currency: entity.CurrencyUSD, Date: date(2026, 3, 2)},
		{ID: "a3", ProductID: "5", SaleAmount: 50, CommissionAmount: 15, Currency: entity.CurrencyUSD, Date: date(2026, 2, 2)},
	}

	got := SummarizeAffiliate(clicks, sales, []*entity.Product{product("1", "Figma")})

	assert.Equal(t, 2, got.TotalClicks)
	assert.Equal(t, 3, got.TotalSales)
	assert.Equal(t, map[entity.Currency]float64{entity.CurrencyNGN: 15000, entity.CurrencyUSD: 90}, got.Earnings)
	require.Len(t, got.RecentActivity, 5)
	assert.Equal(t, ActivityClick, got.RecentActivity[0].Kind)
	assert.Equal(t, "Figma", got.RecentActivity[0].ProductName)
	assert.Equal(t, ActivitySale, got.RecentActivity[1].Kind)
	assert.True(t, got.RecentActivity[4].Date.Equal(date(2026, 2, 2)))
}

func TestSummarizeAffiliate_FeedIsCapped(t *testing.T) {
	var clicks []entity.AffiliateClick
	for i := 0; i < 15; i++ {
		clicks = append(clicks, entity.AffiliateClick{Date: date(2026, 1, i+1)})
	}

	got := SummarizeAffiliate(clicks, nil, nil)

	require.Len(t, got.RecentActivity, 10)
	assert.True(t, got.RecentActivity[0].Date.Equal(date(2026, 1, 15)))
}

func TestReferralLink(t *testing.T) {
	assert.Equal(t,
		"https://course-craft.com/store/creator-01?ref=sam-promo",
		ReferralLink("https://course-craft.com", "creator-01", "", "sam-promo"))
	assert.Equal(t,
		"https://course-craft.com/store/creator-01/products/1?ref=sam-promo",
		ReferralLink("https://course-craft.com", "creator-01", "1", "sam-promo"))
}

func TestCommission(t *testing.T) {
	assert.InDelta(t, 15000, Commission(50000, 30), 1e-9)
}
