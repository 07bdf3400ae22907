// Package domain holds the inputs, intermediate aggregates and outputs of the
// customer spending computation.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit  = 5
	DefaultWindow = "2y"
)

// Request parameterizes a top spending customers run.
type Request struct {
	Limit  int
	Window Window
	// AsOf is the reference time of the window. Zero means "now".
	AsOf time.Time
}

// LineTuple is a line item that survived the window filter, joined to its
// order's customer and its product's category.
type LineTuple struct {
	CustomerID   string
	ProductID    string
	Category     string
	Quantity     int64
	PricePerUnit decimal.Decimal
}

// Amount is quantity × price_per_unit.
func (t LineTuple) Amount() decimal.Decimal {
	return t.PricePerUnit.Mul(decimal.NewFromInt(t.Quantity))
}

// LineKey groups line tuples.
type LineKey struct {
	CustomerID string
	ProductID  string
	Category   string
}

// LineAggregate is the spend of one customer on one product.
type LineAggregate struct {
	CustomerID string
	ProductID  string
	Category   string
	TotalSpent decimal.Decimal
}

// CustomerTotal is the spend of one customer across every product.
type CustomerTotal struct {
	CustomerID string
	TotalSpent decimal.Decimal
}

// CategoryRank positions one category within a customer's purchases. Rank 1
// is the highest spend.
type CategoryRank struct {
	CustomerID    string
	Category      string
	CategorySpent decimal.Decimal
	Rank          int
}

// SummaryRow is one line of the top spending customers report.
type SummaryRow struct {
	CustomerID            string          `json:"customer_id"`
	CustomerName          string          `json:"customer_name"`
	Email                 string          `json:"email"`
	TotalSpent            decimal.Decimal `json:"total_spent"`
	MostPurchasedCategory string          `json:"most_purchased_category"`
}

// SummaryColumns is the fixed column order of SummaryRow exports.
var SummaryColumns = []string{
	"customer_id",
	"customer_name",
	"email",
	"total_spent",
	"most_purchased_category",
}

// CategorySummary aggregates catalog-level sales for one category.
type CategorySummary struct {
	Category               string          `json:"category"`
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TopProduct             string          `json:"top_product"`
	TopProductQuantitySold int64           `json:"top_product_quantity_sold"`
}

// CategorySummaryColumns is the fixed column order of CategorySummary exports.
var CategorySummaryColumns = []string{
	"category",
	"total_revenue",
	"top_product",
	"top_product_quantity_sold",
}

// Validate rejects requests the pipeline must not attempt.
func (r Request) Validate() error {
	if r.Limit < 0 {
		return &InvalidParameterError{Field: "limit", Reason: "must not be negative"}
	}
	return r.Window.Validate()
}
