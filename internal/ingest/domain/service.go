package domain

import (
	"context"
	"errors"
	"io"
)

// Service loads CSV files into the catalog.
type Service interface {
	Import(ctx context.Context, kind Kind, source string, r io.Reader) (ImportRun, error)
}

var (
	ErrUnknownKind    = errors.New("unknown_import_kind")
	ErrEmptyInput     = errors.New("empty_import_input")
	ErrMissingColumn  = errors.New("missing_import_column")
	ErrInvalidRow     = errors.New("invalid_import_row")
	ErrDuplicateRow   = errors.New("duplicate_import_row")
	ErrConflictingRow = errors.New("conflicting_import_row")
)
