// Package migration ensures the tables the process reads and writes exist.
package migration

import (
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/rajesh196rsh/e-commerce/internal/events"
	ingestdomain "github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the process, in dependency order.
func Models() []any {
	models := catalogdomain.Models()
	return append(models,
		&ingestdomain.ImportRun{},
		&events.Record{},
	)
}

// EnsureSchema creates missing tables, columns and indexes. It never drops
// or rewrites existing columns.
func EnsureSchema(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Named("migration").Debug("schema ensured", zap.Int("tables", len(Models())))
	return nil
}
