package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"github.com/shopspring/decimal"
)

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func invalid(line int, format string, args ...any) domain.RowError {
	return domain.RowError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

func parseCustomers(t table) ([]catalogdomain.Customer, []int, []domain.RowError, error) {
	if err := t.require("customer_id", "customer_name", "email"); err != nil {
		return nil, nil, nil, err
	}
	var (
		out   []catalogdomain.Customer
		lines []int
		bad   []domain.RowError
	)
	for _, rec := range t.records() {
		id := rec.get("customer_id")
		if id == "" {
			bad = append(bad, invalid(rec.line, "missing customer_id"))
			continue
		}
		out = append(out, catalogdomain.Customer{
			CustomerID:   id,
			CustomerName: rec.get("customer_name"),
			Email:        strings.ToLower(rec.get("email")),
		})
		lines = append(lines, rec.line)
	}
	return out, lines, bad, nil
}

func parseOrders(t table) ([]catalogdomain.Order, []int, []domain.RowError, error) {
	if err := t.require("order_id", "customer_id", "order_date"); err != nil {
		return nil, nil, nil, err
	}
	var (
		out   []catalogdomain.Order
		lines []int
		bad   []domain.RowError
	)
	for _, rec := range t.records() {
		id, customerID := rec.get("order_id"), rec.get("customer_id")
		if id == "" || customerID == "" {
			bad = append(bad, invalid(rec.line, "missing order_id or customer_id"))
			continue
		}
		at, err := parseOrderDate(rec.get("order_date"))
		if err != nil {
			bad = append(bad, invalid(rec.line, "order_date %q: unrecognized format", rec.get("order_date")))
			continue
		}
		out = append(out, catalogdomain.Order{OrderID: id, CustomerID: customerID, OrderDate: at})
		lines = append(lines, rec.line)
	}
	return out, lines, bad, nil
}

func parseOrderDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range orderDateLayouts {
		at, err := time.Parse(layout, value)
		if err == nil {
			return at.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseLineItems leaves ID unset; the caller assigns one per row.
func parseLineItems(t table) ([]catalogdomain.OrderLineItem, []int, []domain.RowError, error) {
	if err := t.require("order_id", "product_id", "quantity", "price_per_unit"); err != nil {
		return nil, nil, nil, err
	}
	var (
		out   []catalogdomain.OrderLineItem
		lines []int
		bad   []domain.RowError
	)
	for _, rec := range t.records() {
		orderID, productID := rec.get("order_id"), rec.get("product_id")
		if orderID == "" || productID == "" {
			bad = append(bad, invalid(rec.line, "missing order_id or product_id"))
			continue
		}
		qty, err := strconv.ParseInt(rec.get("quantity"), 10, 64)
		if err != nil || qty < 0 {
			bad = append(bad, invalid(rec.line, "quantity %q must be a non-negative integer", rec.get("quantity")))
			continue
		}
		price, err := decimal.NewFromString(rec.get("price_per_unit"))
		if err != nil || price.IsNegative() {
			bad = append(bad, invalid(rec.line, "price_per_unit %q must be a non-negative number", rec.get("price_per_unit")))
			continue
		}
		if !catalogdomain.ValidMoney(price) {
			bad = append(bad, invalid(rec.line, "price_per_unit %q must have at most %d decimal places and be below 100000000000", rec.get("price_per_unit"), catalogdomain.MoneyScale))
			continue
		}
		out = append(out, catalogdomain.OrderLineItem{
			OrderID:      orderID,
			ProductID:    productID,
			Quantity:     qty,
			PricePerUnit: price,
		})
		lines = append(lines, rec.line)
	}
	return out, lines, bad, nil
}

// productRow holds a product whose numeric columns may be missing.
type productRow struct {
	line         int
	product      catalogdomain.Product
	price        *decimal.Decimal
	quantitySold *float64
	rating       *float64
	reviewCount  *int64
}

// parseProducts reads product rows and fills missing numerics: price and
// quantity_sold with the column median, rating with the mean rating of the
// product's category in the file (falling back to storedMeans, then 0), and
// review_count with 0. Unparsable numerics, and prices outside the money
// columns' range, count as missing.
func parseProducts(t table, storedMeans map[string]float64) ([]catalogdomain.Product, []int, []domain.RowError, error) {
	if err := t.require("product_id", "product_name", "category"); err != nil {
		return nil, nil, nil, err
	}

	var (
		rows []productRow
		bad  []domain.RowError
	)
	for _, rec := range t.records() {
		name, category := rec.get("product_name"), rec.get("category")
		if name == "" || category == "" {
			bad = append(bad, invalid(rec.line, "missing product_name or category"))
			continue
		}
		row := productRow{
			line: rec.line,
			product: catalogdomain.Product{
				ProductID:   rec.get("product_id"),
				ProductName: name,
				Category:    category,
			},
		}
		if v, err := decimal.NewFromString(rec.get("price")); err == nil && !v.IsNegative() && catalogdomain.ValidMoney(v) {
			row.price = &v
		}
		if v, ok := parseFloat(rec.get("quantity_sold")); ok && v >= 0 {
			row.quantitySold = &v
		}
		if v, ok := parseFloat(rec.get("rating")); ok {
			row.rating = &v
		}
		if v, ok := parseFloat(rec.get("review_count")); ok && v >= 0 {
			n := int64(math.Round(v))
			row.reviewCount = &n
		}
		rows = append(rows, row)
	}

	medianPrice := medianDecimal(rows)
	medianQty := medianFloat(rows)
	means := categoryRatingMeans(rows)

	out := make([]catalogdomain.Product, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for _, row := range rows {
		p := row.product
		p.Price = medianPrice
		if row.price != nil {
			p.Price = *row.price
		}
		qty := medianQty
		if row.quantitySold != nil {
			qty = *row.quantitySold
		}
		p.QuantitySold = int64(math.Round(qty))
		switch {
		case row.rating != nil:
			p.Rating = *row.rating
		default:
			if mean, ok := means[p.Category]; ok {
				p.Rating = mean
			} else {
				p.Rating = storedMeans[p.Category]
			}
		}
		if row.reviewCount != nil {
			p.ReviewCount = *row.reviewCount
		}
		out = append(out, p)
		lines = append(lines, row.line)
	}
	return out, lines, bad, nil
}

func parseFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func medianDecimal(rows []productRow) decimal.Decimal {
	var values []decimal.Decimal
	for _, r := range rows {
		if r.price != nil {
			values = append(values, *r.price)
		}
	}
	if len(values) == 0 {
		return decimal.Zero
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return values[mid-1].Add(values[mid]).DivRound(decimal.NewFromInt(2), catalogdomain.MoneyScale)
}

func medianFloat(rows []productRow) float64 {
	var values []float64
	for _, r := range rows {
		if r.quantitySold != nil {
			values = append(values, *r.quantitySold)
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

func categoryRatingMeans(rows []productRow) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		if r.rating == nil {
			continue
		}
		sums[r.product.Category] += *r.rating
		counts[r.product.Category]++
	}
	out := make(map[string]float64, len(sums))
	for category, sum := range sums {
		out[category] = sum / float64(counts[category])
	}
	return out
}

// mergeProduct folds incoming into existing: counts are summed, price and
// rating become averages weighted by quantity_sold.
func mergeProduct(existing, incoming catalogdomain.Product) catalogdomain.Product {
	merged := existing
	totalQty := existing.QuantitySold + incoming.QuantitySold
	merged.QuantitySold = totalQty
	merged.ReviewCount = existing.ReviewCount + incoming.ReviewCount

	if totalQty == 0 {
		merged.Price = existing.Price.Add(incoming.Price).DivRound(decimal.NewFromInt(2), catalogdomain.MoneyScale)
		merged.Rating = (existing.Rating + incoming.Rating) / 2
		return merged
	}

	eq, iq := decimal.NewFromInt(existing.QuantitySold), decimal.NewFromInt(incoming.QuantitySold)
	merged.Price = existing.Price.Mul(eq).Add(incoming.Price.Mul(iq)).DivRound(decimal.NewFromInt(totalQty), catalogdomain.MoneyScale)
	merged.Rating = (existing.Rating*float64(existing.QuantitySold) + incoming.Rating*float64(incoming.QuantitySold)) / float64(totalQty)
	return merged
}

func sameProduct(a, b catalogdomain.Product) bool {
	return strings.EqualFold(a.ProductName, b.ProductName) && strings.EqualFold(a.Category, b.Category)
}
