package domain

import (
	"context"

	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
)

// Service exposes spending analytics reports.
type Service interface {
	TopSpendingCustomers(ctx context.Context, req Request) ([]SummaryRow, error)
	CategorySummary(ctx context.Context) ([]CategorySummary, error)
}

// Source gives full, unfiltered read access to the catalog collections.
type Source interface {
	ListOrders(ctx context.Context) ([]catalogdomain.Order, error)
	ListLineItems(ctx context.Context) ([]catalogdomain.OrderLineItem, error)
	ListProducts(ctx context.Context) ([]catalogdomain.Product, error)
	ListCustomers(ctx context.Context) ([]catalogdomain.Customer, error)
}

// Dataset is a fully loaded snapshot of the catalog. It also serves as an
// in-memory Source.
type Dataset struct {
	Orders    []catalogdomain.Order
	LineItems []catalogdomain.OrderLineItem
	Products  []catalogdomain.Product
	Customers []catalogdomain.Customer
}

func (d Dataset) ListOrders(context.Context) ([]catalogdomain.Order, error) {
	return d.Orders, nil
}

func (d Dataset) ListLineItems(context.Context) ([]catalogdomain.OrderLineItem, error) {
	return d.LineItems, nil
}

func (d Dataset) ListProducts(context.Context) ([]catalogdomain.Product, error) {
	return d.Products, nil
}

func (d Dataset) ListCustomers(context.Context) ([]catalogdomain.Customer, error) {
	return d.Customers, nil
}
