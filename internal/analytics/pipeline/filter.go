package pipeline

import (
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
)

// FilterWindow joins orders, line items and products, keeping the line items
// whose order was placed at or after start.
//
// Records that fall inside the window must resolve every reference: an order
// with an unknown customer or a line item with an unknown product fails the
// whole run. A line item whose order is unknown always fails since its window
// membership cannot be decided.
func FilterWindow(ds domain.Dataset, start time.Time) ([]domain.LineTuple, error) {
	customers := make(map[string]struct{}, len(ds.Customers))
	for _, c := range ds.Customers {
		customers[c.CustomerID] = struct{}{}
	}

	categories := make(map[string]string, len(ds.Products))
	for _, p := range ds.Products {
		categories[p.ProductID] = p.Category
	}

	orders := make(map[string]catalogdomain.Order, len(ds.Orders))
	for _, o := range ds.Orders {
		orders[o.OrderID] = o
		if !inWindow(o, start) {
			continue
		}
		if _, ok := customers[o.CustomerID]; !ok {
			return nil, &domain.ReferentialIntegrityError{
				Entity: "order",
				ID:     o.OrderID,
				Ref:    "customer",
				RefID:  o.CustomerID,
			}
		}
	}

	tuples := make([]domain.LineTuple, 0, len(ds.LineItems))
	for _, item := range ds.LineItems {
		order, ok := orders[item.OrderID]
		if !ok {
			return nil, &domain.ReferentialIntegrityError{
				Entity: "order_line_item",
				ID:     lineItemRef(item),
				Ref:    "order",
				RefID:  item.OrderID,
			}
		}
		if !inWindow(order, start) {
			continue
		}

		category, ok := categories[item.ProductID]
		if !ok {
			return nil, &domain.ReferentialIntegrityError{
				Entity: "order_line_item",
				ID:     lineItemRef(item),
				Ref:    "product",
				RefID:  item.ProductID,
			}
		}
		if item.Quantity < 0 {
			return nil, &domain.InvalidRecordError{Entity: "order_line_item", ID: lineItemRef(item), Reason: "negative quantity"}
		}
		if item.PricePerUnit.IsNegative() {
			return nil, &domain.InvalidRecordError{Entity: "order_line_item", ID: lineItemRef(item), Reason: "negative price_per_unit"}
		}

		tuples = append(tuples, domain.LineTuple{
			CustomerID:   order.CustomerID,
			ProductID:    item.ProductID,
			Category:     category,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
		})
	}
	return tuples, nil
}

// inWindow treats start as an inclusive lower bound.
func inWindow(o catalogdomain.Order, start time.Time) bool {
	return !o.OrderDate.Before(start)
}

func lineItemRef(item catalogdomain.OrderLineItem) string {
	if item.ID != 0 {
		return item.ID.String()
	}
	return item.OrderID + "/" + item.ProductID
}
