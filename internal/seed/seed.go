package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type demoLine struct {
	productID string
	quantity  int64
	price     string
}

type demoOrder struct {
	orderID    string
	customerID string
	// daysAgo is relative to the seeding time.
	daysAgo int
	lines   []demoLine
}

var demoCustomers = []domain.Customer{
	{CustomerID: "CUST-0001", CustomerName: "Ada Lovelace", Email: "ada@example.com"},
	{CustomerID: "CUST-0002", CustomerName: "Grace Hopper", Email: "grace@example.com"},
	{CustomerID: "CUST-0003", CustomerName: "Alan Turing", Email: "alan@example.com"},
	{CustomerID: "CUST-0004", CustomerName: "Edsger Dijkstra", Email: "edsger@example.com"},
	{CustomerID: "CUST-0005", CustomerName: "Barbara Liskov", Email: "barbara@example.com"},
	{CustomerID: "CUST-0006", CustomerName: "Ken Thompson", Email: "ken@example.com"},
}

var demoProducts = []domain.Product{
	{ProductID: "PROD-001", ProductName: "Mechanical Keyboard", Category: "Electronics", Price: decimal.RequireFromString("89.00"), QuantitySold: 120, Rating: 4.6, ReviewCount: 48},
	{ProductID: "PROD-002", ProductName: "USB-C Hub", Category: "Electronics", Price: decimal.RequireFromString("35.50"), QuantitySold: 310, Rating: 4.1, ReviewCount: 95},
	{ProductID: "PROD-003", ProductName: "The Art of Programming", Category: "Books", Price: decimal.RequireFromString("59.99"), QuantitySold: 75, Rating: 4.9, ReviewCount: 30},
	{ProductID: "PROD-004", ProductName: "Distributed Systems", Category: "Books", Price: decimal.RequireFromString("44.00"), QuantitySold: 60, Rating: 4.7, ReviewCount: 22},
	{ProductID: "PROD-005", ProductName: "Pour-Over Kettle", Category: "Kitchen", Price: decimal.RequireFromString("42.00"), QuantitySold: 80, Rating: 4.3, ReviewCount: 17},
	{ProductID: "PROD-006", ProductName: "Chef Knife", Category: "Kitchen", Price: decimal.RequireFromString("120.00"), QuantitySold: 25, Rating: 4.8, ReviewCount: 11},
}

var demoOrders = []demoOrder{
	{orderID: "ORD-1001", customerID: "CUST-0001", daysAgo: 12, lines: []demoLine{{"PROD-003", 2, "59.99"}, {"PROD-002", 1, "35.50"}}},
	{orderID: "ORD-1002", customerID: "CUST-0001", daysAgo: 200, lines: []demoLine{{"PROD-004", 1, "44.00"}}},
	{orderID: "ORD-1003", customerID: "CUST-0002", daysAgo: 45, lines: []demoLine{{"PROD-001", 2, "89.00"}, {"PROD-005", 1, "42.00"}}},
	{orderID: "ORD-1004", customerID: "CUST-0003", daysAgo: 400, lines: []demoLine{{"PROD-006", 1, "120.00"}, {"PROD-003", 1, "59.99"}}},
	{orderID: "ORD-1005", customerID: "CUST-0004", daysAgo: 5, lines: []demoLine{{"PROD-002", 4, "35.50"}}},
	{orderID: "ORD-1006", customerID: "CUST-0005", daysAgo: 900, lines: []demoLine{{"PROD-006", 3, "120.00"}}},
	{orderID: "ORD-1007", customerID: "CUST-0002", daysAgo: 1, lines: []demoLine{{"PROD-004", 1, "44.00"}}},
}

// EnsureDemoData inserts a small sample catalog. Existing rows are kept, so
// repeated calls are no-ops. Order dates are placed relative to now.
func EnsureDemoData(ctx context.Context, db *gorm.DB, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seeded int64
		if err := tx.Model(&domain.Order{}).Where("order_id = ?", demoOrders[0].orderID).Count(&seeded).Error; err != nil {
			return err
		}
		if seeded > 0 {
			return nil
		}

		insert := tx.Clauses(clause.OnConflict{DoNothing: true})
		customers := make([]domain.Customer, len(demoCustomers))
		copy(customers, demoCustomers)
		if err := insert.Create(&customers).Error; err != nil {
			return err
		}
		products := make([]domain.Product, len(demoProducts))
		copy(products, demoProducts)
		if err := insert.Create(&products).Error; err != nil {
			return err
		}

		orders := make([]domain.Order, 0, len(demoOrders))
		var items []domain.OrderLineItem
		for _, o := range demoOrders {
			orders = append(orders, domain.Order{
				OrderID:    o.orderID,
				CustomerID: o.customerID,
				OrderDate:  now.UTC().AddDate(0, 0, -o.daysAgo),
			})
			for _, l := range o.lines {
				items = append(items, domain.OrderLineItem{
					ID:           node.Generate(),
					OrderID:      o.orderID,
					ProductID:    l.productID,
					Quantity:     l.quantity,
					PricePerUnit: decimal.RequireFromString(l.price),
				})
			}
		}
		if err := insert.Create(&orders).Error; err != nil {
			return err
		}
		return insert.Create(&items).Error
	})
}
