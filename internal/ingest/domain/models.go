// Package domain describes CSV imports into the order catalog.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind selects the catalog table an import writes to.
type Kind string

const (
	KindCustomers Kind = "customers"
	KindProducts  Kind = "products"
	KindOrders    Kind = "orders"
	KindLineItems Kind = "order_line_items"
)

// DefaultBatchSize is the number of rows written per statement.
const DefaultBatchSize = 500

// Kinds lists every importable kind in dependency order.
func Kinds() []Kind {
	return []Kind{KindCustomers, KindProducts, KindOrders, KindLineItems}
}

// ParseKind accepts a kind name, its singular form, or "line_items".
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "customers", "customer":
		return KindCustomers, nil
	case "products", "product":
		return KindProducts, nil
	case "orders", "order":
		return KindOrders, nil
	case "order_line_items", "order_line_item", "line_items", "line_item":
		return KindLineItems, nil
	}
	return "", ErrUnknownKind
}

type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportRun records one CSV import.
type ImportRun struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Kind       Kind              `gorm:"type:text;not null;index" json:"kind"`
	Source     string            `gorm:"type:text;not null" json:"source"`
	Status     ImportStatus      `gorm:"type:text;not null" json:"status"`
	Total      int               `gorm:"not null;default:0" json:"total"`
	Inserted   int               `gorm:"not null;default:0" json:"inserted"`
	Merged     int               `gorm:"not null;default:0" json:"merged"`
	Failed     int               `gorm:"not null;default:0" json:"failed"`
	Stats      datatypes.JSONMap `gorm:"type:json" json:"stats,omitempty"`
	Error      string            `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time         `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// TableName sets the database table name.
func (ImportRun) TableName() string { return "import_runs" }

// RowError describes a rejected input row. Line is 1-based and counts the
// header.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}
