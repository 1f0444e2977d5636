package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is wrapped by every *SchemaError and by malformed CSV.
	ErrSchema = errors.New("trace: schema error")
	// ErrEmptyInput is returned for a header-only table when
	// ReadOptions.RequireRows is set.
	ErrEmptyInput = errors.New("trace: empty input")
)

// SchemaError describes a missing column or a malformed cell.
// Row is the zero-based data row, or -1 for header problems.
type SchemaError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
