package pipeline

import (
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

var asOf = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ds domain.Dataset
}

func newFixture() *fixture {
	return &fixture{}
}

func (f *fixture) customer(id string) *fixture {
	f.ds.Customers = append(f.ds.Customers, catalogdomain.Customer{
		CustomerID:   id,
		CustomerName: "Customer " + id,
		Email:        id + "@example.com",
	})
	return f
}

func (f *fixture) product(id, category string) *fixture {
	f.ds.Products = append(f.ds.Products, catalogdomain.Product{
		ProductID:   id,
		ProductName: "Product " + id,
		Category:    category,
	})
	return f
}

func (f *fixture) order(id, customerID string, at time.Time) *fixture {
	f.ds.Orders = append(f.ds.Orders, catalogdomain.Order{OrderID: id, CustomerID: customerID, OrderDate: at})
	return f
}

func (f *fixture) item(orderID, productID string, qty int64, price string) *fixture {
	f.ds.LineItems = append(f.ds.LineItems, catalogdomain.OrderLineItem{
		OrderID:      orderID,
		ProductID:    productID,
		Quantity:     qty,
		PricePerUnit: decimal.RequireFromString(price),
	})
	return f
}

// exampleDataset is the two-order C1 scenario.
func exampleDataset() domain.Dataset {
	return newFixture().
		customer("C1").
		product("P-EL", "Electronics").
		product("P-BK", "Books").
		order("A", "C1", asOf.AddDate(0, -1, 0)).
		order("B", "C1", asOf.AddDate(0, -2, 0)).
		item("A", "P-EL", 2, "10").
		item("B", "P-BK", 1, "50").
		ds
}
