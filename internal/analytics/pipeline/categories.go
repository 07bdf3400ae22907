package pipeline

import (
	"sort"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// SummarizeCategories reports catalog revenue per category along with the
// best selling product. Rows are ordered by category.
func SummarizeCategories(products []catalogdomain.Product) []domain.CategorySummary {
	type acc struct {
		revenue decimal.Decimal
		top     *catalogdomain.Product
	}

	byCategory := make(map[string]*acc)
	for i := range products {
		p := &products[i]
		a, ok := byCategory[p.Category]
		if !ok {
			a = &acc{}
			byCategory[p.Category] = a
		}
		a.revenue = a.revenue.Add(p.Price.Mul(decimal.NewFromInt(p.QuantitySold)))
		if a.top == nil ||
			p.QuantitySold > a.top.QuantitySold ||
			(p.QuantitySold == a.top.QuantitySold && p.ProductID < a.top.ProductID) {
			a.top = p
		}
	}

	out := make([]domain.CategorySummary, 0, len(byCategory))
	for category, a := range byCategory {
		out = append(out, domain.CategorySummary{
			Category:               category,
			TotalRevenue:           a.revenue,
			TopProduct:             a.top.ProductName,
			TopProductQuantitySold: a.top.QuantitySold,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
