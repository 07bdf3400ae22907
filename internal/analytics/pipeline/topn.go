package pipeline

import (
	"sort"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
)

// SelectTopN inner-joins customer identity, totals and top categories, orders
// the rows by total spend descending (customer_id ascending on ties) and keeps
// the first limit rows. A limit of zero or less yields an empty result.
func SelectTopN(customers []catalogdomain.Customer, totals []domain.CustomerTotal, top []domain.CategoryRank, limit int) []domain.SummaryRow {
	if limit <= 0 {
		return []domain.SummaryRow{}
	}

	identity := make(map[string]catalogdomain.Customer, len(customers))
	for _, c := range customers {
		identity[c.CustomerID] = c
	}
	categories := make(map[string]string, len(top))
	for _, r := range top {
		categories[r.CustomerID] = r.Category
	}

	rows := make([]domain.SummaryRow, 0, len(totals))
	for _, t := range totals {
		c, ok := identity[t.CustomerID]
		if !ok {
			continue
		}
		category, ok := categories[t.CustomerID]
		if !ok {
			continue
		}
		rows = append(rows, domain.SummaryRow{
			CustomerID:            c.CustomerID,
			CustomerName:          c.CustomerName,
			Email:                 c.Email,
			TotalSpent:            t.TotalSpent,
			MostPurchasedCategory: category,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].TotalSpent.Cmp(rows[j].TotalSpent); cmp != 0 {
			return cmp > 0
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
