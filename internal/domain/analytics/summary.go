// Package analytics derives dashboard figures from sales records.
package analytics

import (
	"sort"

	"coursecraft/internal/domain/entity"
)

const (
	topProductLimit = 5
	monthLimit      = 5
	monthLayout     = "Jan 06"
)

// ConversionPolicy maps an amount's currency onto the common unit used for
// totals and rankings.
type ConversionPolicy interface {
	Weight(currency entity.Currency) float64
}

// Weights is a fixed per-currency multiplier table. Currencies without an
// entry count at face value.
type Weights map[entity.Currency]float64

// Weight implements ConversionPolicy.
func (w Weights) Weight(c entity.Currency) float64 {
	if v, ok := w[c]; ok {
		return v
	}

	return 1
}

// TopProduct is one row of the best sellers ranking.
type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Sales     int    `json:"sales"`
}

// MonthlyRevenue is the weighted revenue of one calendar month.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// Summary is the creator dashboard overview.
type Summary struct {
	TotalRevenue  float64          `json:"totalRevenue"`
	TotalStudents int              `json:"totalStudents"`
	ProductsSold  int              `json:"productsSold"`
	TopProducts   []TopProduct     `json:"topProducts"`
	SalesByMonth  []MonthlyRevenue `json:"salesByMonth"`
}

// Summarize computes the dashboard overview. Rankings only cover the given
// products; months appear in the order they are first seen in sales and only
// the last five are kept.
func Summarize(sales []entity.Sale, products []*entity.Product, students []*entity.User, policy ConversionPolicy) Summary {
	if policy == nil {
		policy = Weights(nil)
	}

	counts := make(map[string]int, len(products))
	months := make(map[string]int)
	series := make([]MonthlyRevenue, 0)
	var total float64

	for _, s := range sales {
		value := s.Amount * policy.Weight(s.Currency)
		total += value
		counts[s.ProductID]++

		label := s.Date.Format(monthLayout)
		i, ok := months[label]
		if !ok {
			i = len(series)
			months[label] = i
			series = append(series, MonthlyRevenue{Month: label})
		}
		series[i].Revenue += value
	}

	if len(series) > monthLimit {
		series = series[len(series)-monthLimit:]
	}

	return Summary{
		TotalRevenue:  total,
		TotalStudents: len(students),
		ProductsSold:  len(sales),
		TopProducts:   topProducts(products, counts),
		SalesByMonth:  series,
	}
}

func topProducts(products []*entity.Product, counts map[string]int) []TopProduct {
	ranked := make([]TopProduct, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, TopProduct{ProductID: p.ID, Name: p.Name, Sales: counts[p.ID]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sales > ranked[j].Sales
	})

	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}

	return ranked
}
