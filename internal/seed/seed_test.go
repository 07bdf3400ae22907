package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEnsureDemoDataIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_idempotent?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Models()...))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, EnsureDemoData(context.Background(), db, now))
	require.NoError(t, EnsureDemoData(context.Background(), db, now.Add(time.Hour)))

	var customers, orders, items int64
	require.NoError(t, db.Model(&domain.Customer{}).Count(&customers).Error)
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&domain.OrderLineItem{}).Count(&items).Error)
	require.Equal(t, int64(len(demoCustomers)), customers)
	require.Equal(t, int64(len(demoOrders)), orders)
	require.Equal(t, int64(10), items)

	var latest domain.Order
	require.NoError(t, db.Where("order_id = ?", "ORD-1007").First(&latest).Error)
	require.True(t, latest.OrderDate.Equal(now.AddDate(0, 0, -1)))
}

func TestEnsureDemoDataRequiresDB(t *testing.T) {
	require.Error(t, EnsureDemoData(context.Background(), nil, time.Now()))
}
