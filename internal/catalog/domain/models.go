// Package domain contains persistence models for the order catalog that feeds
// spending analytics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places the money columns keep.
const MoneyScale = 4

// maxMoney bounds money magnitudes to 11 integer digits, so a value with
// MoneyScale places never exceeds the 15 significant digits sqlite keeps
// when it stores decimal columns as REAL.
var maxMoney = decimal.New(1, 11)

// ValidMoney reports whether d is stored exactly by every supported database.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale)) && d.Abs().LessThan(maxMoney)
}

// Customer is static reference data for a buyer.
type Customer struct {
	CustomerID   string    `gorm:"primaryKey;type:text" json:"customer_id"`
	CustomerName string    `gorm:"type:text;not null" json:"customer_name"`
	Email        string    `gorm:"type:text;not null" json:"email"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Product is static reference data with catalog-level sales statistics.
type Product struct {
	ProductID    string          `gorm:"primaryKey;type:text" json:"product_id"`
	ProductName  string          `gorm:"type:text;not null" json:"product_name"`
	Category     string          `gorm:"type:text;not null;index" json:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	QuantitySold int64           `gorm:"not null;default:0" json:"quantity_sold"`
	Rating       float64         `gorm:"not null;default:0" json:"rating"`
	ReviewCount  int64           `gorm:"not null;default:0" json:"review_count"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Order is the header of a purchase placed by one customer.
type Order struct {
	OrderID    string    `gorm:"primaryKey;type:text" json:"order_id"`
	CustomerID string    `gorm:"type:text;not null;index" json:"customer_id"`
	OrderDate  time.Time `gorm:"not null;index" json:"order_date"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderLineItem is one product-quantity-price entry within an order.
type OrderLineItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"-"`
	OrderID      string          `gorm:"type:text;not null;index" json:"order_id"`
	ProductID    string          `gorm:"type:text;not null;index" json:"product_id"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price_per_unit"`
}

// TableName sets the database table name.
func (OrderLineItem) TableName() string { return "order_line_items" }

// Amount is quantity × price_per_unit.
func (i OrderLineItem) Amount() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(i.Quantity))
}

// Models lists every catalog table, in dependency order.
func Models() []any {
	return []any{
		&Customer{},
		&Product{},
		&Order{},
		&OrderLineItem{},
	}
}
