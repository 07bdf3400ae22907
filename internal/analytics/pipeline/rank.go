package pipeline

import (
	"sort"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/shopspring/decimal"
)

type categoryKey struct {
	customerID string
	category   string
}

// RankCategories sums line aggregates per (customer, category) and ranks each
// customer's categories by spend descending. Equal spend is broken by category
// label ascending, so ranks are dense and reproducible: 1..K per customer.
// Customers whose spend sums to zero are not ranked.
func RankCategories(aggs []domain.LineAggregate) []domain.CategoryRank {
	sums := make(map[categoryKey]decimal.Decimal)
	for _, a := range aggs {
		key := categoryKey{customerID: a.CustomerID, category: a.Category}
		sums[key] = sums[key].Add(a.TotalSpent)
	}

	spentByCustomer := make(map[string]decimal.Decimal)
	for key, spent := range sums {
		spentByCustomer[key.customerID] = spentByCustomer[key.customerID].Add(spent)
	}

	byCustomer := make(map[string][]domain.CategoryRank)
	for key, spent := range sums {
		if spentByCustomer[key.customerID].IsZero() {
			continue
		}
		byCustomer[key.customerID] = append(byCustomer[key.customerID], domain.CategoryRank{
			CustomerID:    key.customerID,
			Category:      key.category,
			CategorySpent: spent,
		})
	}

	customerIDs := make([]string, 0, len(byCustomer))
	for customerID := range byCustomer {
		customerIDs = append(customerIDs, customerID)
	}
	sort.Strings(customerIDs)

	out := make([]domain.CategoryRank, 0, len(sums))
	for _, customerID := range customerIDs {
		ranks := byCustomer[customerID]
		sort.Slice(ranks, func(i, j int) bool {
			if cmp := ranks[i].CategorySpent.Cmp(ranks[j].CategorySpent); cmp != 0 {
				return cmp > 0
			}
			return ranks[i].Category < ranks[j].Category
		})
		for i := range ranks {
			ranks[i].Rank = i + 1
		}
		out = append(out, ranks...)
	}
	return out
}

// TopCategories keeps the rank-1 row of every customer.
func TopCategories(ranks []domain.CategoryRank) []domain.CategoryRank {
	out := make([]domain.CategoryRank, 0)
	for _, r := range ranks {
		if r.Rank == 1 {
			out = append(out, r)
		}
	}
	return out
}
