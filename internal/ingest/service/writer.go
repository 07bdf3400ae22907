package service

import (
	"context"

	"github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"gorm.io/gorm"
)

// maxRowErrors caps the row errors kept on an import run.
const maxRowErrors = 50

type tally struct {
	inserted int
	merged   int
	failed   int
	errors   []domain.RowError
}

func (t *tally) reject(err domain.RowError) {
	t.failed++
	if len(t.errors) < maxRowErrors {
		t.errors = append(t.errors, err)
	}
}

// resolver handles a row whose single insert failed. It reports whether the
// row was merged into an existing record.
type resolver[T any] func(ctx context.Context, row T, insertErr error) (bool, error)

// writeBatches inserts rows batchSize at a time, each batch in its own
// transaction. When a batch fails it is retried row by row and rows that
// still fail are handed to resolve.
func writeBatches[T any](ctx context.Context, db *gorm.DB, rows []T, lines []int, batchSize int, resolve resolver[T]) (tally, error) {
	var out tally
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}

	for start := 0; start < len(rows); start += batchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := min(start+batchSize, len(rows))
		batch := rows[start:end]

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&batch).Error
		})
		if err == nil {
			out.inserted += len(batch)
			continue
		}

		for i := range batch {
			row := batch[i]
			insertErr := db.WithContext(ctx).Create(&row).Error
			if insertErr == nil {
				out.inserted++
				continue
			}
			merged, err := resolve(ctx, row, insertErr)
			if err != nil {
				out.reject(domain.RowError{Line: lines[start+i], Reason: err.Error()})
				continue
			}
			if merged {
				out.merged++
			} else {
				out.inserted++
			}
		}
	}
	return out, nil
}
