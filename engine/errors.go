package engine

import (
	"errors"
	"fmt"
)

// Pipeline errors. Callers test with errors.Is.
var (
	// ErrEmptyDomain means a scale was built from zero values or keys.
	ErrEmptyDomain = errors.New("empty domain")

	// ErrInvalidRow is the sanitizer's rejection reason. It is recovered
	// inside SanitizeAll and never reaches Layout callers.
	ErrInvalidRow = errors.New("invalid row")

	// ErrAcquisition marks an upstream data load failure.
	ErrAcquisition = errors.New("data acquisition failed")

	ErrInvalidSelection = errors.New("invalid field selection")
	ErrInvalidLayout    = errors.New("invalid layout config")
	ErrInvalidPadding   = errors.New("invalid band padding")
	ErrNonFinite        = errors.New("non-finite coordinate")
	ErrUnknownChartKind = errors.New("unknown chart kind")
)

// RowError explains why the sanitizer rejected a record.
type RowError struct {
	Field  string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid row: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid row: field %q %s (%q)", e.Field, e.Reason, e.Value)
}

func (e *RowError) Unwrap() error { return ErrInvalidRow }
