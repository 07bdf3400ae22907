package pipeline

import (
	"fmt"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/shopspring/decimal"
)

// VerifyTotals checks that every customer total equals the sum of that
// customer's category spend, and that both sides cover the same customers.
func VerifyTotals(totals []domain.CustomerTotal, ranks []domain.CategoryRank) error {
	byCategory := make(map[string]decimal.Decimal, len(totals))
	for _, r := range ranks {
		byCategory[r.CustomerID] = byCategory[r.CustomerID].Add(r.CategorySpent)
	}
	if len(byCategory) != len(totals) {
		return fmt.Errorf("%w: %d customer totals, %d ranked customers", domain.ErrUnbalancedTotals, len(totals), len(byCategory))
	}
	for _, t := range totals {
		sum, ok := byCategory[t.CustomerID]
		if !ok || !sum.Equal(t.TotalSpent) {
			return fmt.Errorf("%w: customer %s", domain.ErrUnbalancedTotals, t.CustomerID)
		}
	}
	return nil
}
