// Package repository reads and writes the order catalog through gorm.
package repository

import (
	"context"
	"fmt"

	analyticsdomain "github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed catalog. Reads return every row in a stable order.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []domain.Order
	if err := s.db.WithContext(ctx).Order("order_id ASC").Find(&rows).Error; err != nil {
		return nil, unavailable("orders", err)
	}
	return rows, nil
}

func (s *Store) ListLineItems(ctx context.Context) ([]domain.OrderLineItem, error) {
	var rows []domain.OrderLineItem
	if err := s.db.WithContext(ctx).Order("order_id ASC, product_id ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, unavailable("order_line_items", err)
	}
	return rows, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	if err := s.db.WithContext(ctx).Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, unavailable("products", err)
	}
	return rows, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var rows []domain.Customer
	if err := s.db.WithContext(ctx).Order("customer_id ASC").Find(&rows).Error; err != nil {
		return nil, unavailable("customers", err)
	}
	return rows, nil
}

// FindProduct returns nil when id is unknown.
func (s *Store) FindProduct(ctx context.Context, tx *gorm.DB, id string) (*domain.Product, error) {
	var product domain.Product
	err := s.conn(tx).WithContext(ctx).Where("product_id = ?", id).Limit(1).Find(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ProductID == "" {
		return nil, nil
	}
	return &product, nil
}

// FindProductByNameCategory matches name and category case-insensitively.
func (s *Store) FindProductByNameCategory(ctx context.Context, tx *gorm.DB, name, category string) (*domain.Product, error) {
	var product domain.Product
	err := s.conn(tx).WithContext(ctx).
		Where("LOWER(product_name) = LOWER(?) AND LOWER(category) = LOWER(?)", name, category).
		Order("product_id ASC").
		Limit(1).
		Find(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ProductID == "" {
		return nil, nil
	}
	return &product, nil
}

// CategoryRatingMeans averages ratings per category over stored products.
func (s *Store) CategoryRatingMeans(ctx context.Context) (map[string]float64, error) {
	type row struct {
		Category string
		Mean     float64
	}
	var rows []row
	err := s.db.WithContext(ctx).Raw(
		`SELECT category, AVG(rating) AS mean
		 FROM products
		 GROUP BY category`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Mean
	}
	return out, nil
}

// InsertBatch creates rows in a single statement. Rows whose primary key
// already exists are left untouched.
func InsertBatch[T any](ctx context.Context, tx *gorm.DB, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return res.RowsAffected, res.Error
}

// UpdateProduct saves merged catalog statistics.
func (s *Store) UpdateProduct(ctx context.Context, tx *gorm.DB, product *domain.Product) error {
	return s.conn(tx).WithContext(ctx).
		Model(&domain.Product{}).
		Where("product_id = ?", product.ProductID).
		Updates(map[string]any{
			"price":         product.Price,
			"quantity_sold": product.QuantitySold,
			"rating":        product.Rating,
			"review_count":  product.ReviewCount,
			"updated_at":    product.UpdatedAt,
		}).Error
}

// DB exposes the underlying handle for transactions.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func unavailable(table string, err error) error {
	return fmt.Errorf("%w: list %s: %v", analyticsdomain.ErrSourceUnavailable, table, err)
}

var _ analyticsdomain.Source = (*Store)(nil)
