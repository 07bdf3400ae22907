package migration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEnsureSchemaCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_schema?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(db, zap.NewNop()))
	require.NoError(t, EnsureSchema(db, zap.NewNop()))

	for _, table := range []string{"customers", "products", "orders", "order_line_items", "import_runs", "analytics_events"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}
