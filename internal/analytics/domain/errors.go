package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter     = errors.New("invalid_parameter")
	ErrReferentialIntegrity = errors.New("referential_integrity")
	ErrInvalidRecord        = errors.New("invalid_record")
	ErrUnbalancedTotals     = errors.New("unbalanced_totals")
	ErrSourceUnavailable    = errors.New("source_unavailable")
)

// InvalidParameterError rejects a request before any computation runs.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// ReferentialIntegrityError reports a record pointing at a missing parent or
// reference record. Entity/ID name the offending record, Ref/RefID the
// missing one.
type ReferentialIntegrityError struct {
	Entity string
	ID     string
	Ref    string
	RefID  string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s references unknown %s %s", e.Entity, e.ID, e.Ref, e.RefID)
}

func (e *ReferentialIntegrityError) Unwrap() error { return ErrReferentialIntegrity }

// InvalidRecordError reports a source record whose values break the data model.
type InvalidRecordError struct {
	Entity string
	ID     string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *InvalidRecordError) Unwrap() error { return ErrInvalidRecord }
