package compare

import (
	"errors"
	"fmt"

	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

// ErrTolerance is wrapped by every *ToleranceError.
var ErrTolerance = errors.New("compare: residual exceeds tolerance")

// Tolerance bounds the absolute residual per column. A zero bound disables
// the check for that column.
type Tolerance struct {
	MaxAbsC float64 `json:"max_abs_c,omitempty" yaml:"max_abs_c"`
	MaxAbsH float64 `json:"max_abs_h,omitempty" yaml:"max_abs_h"`
}

// Enabled reports whether any column is checked.
func (t Tolerance) Enabled() bool {
	return t.MaxAbsC > 0 || t.MaxAbsH > 0
}

// DefaultBound allows one quantization step plus the given model mismatch
// on both columns.
func DefaultBound(scale fixedpoint.Scale, mismatch float64) Tolerance {
	b := scale.Step() + mismatch
	return Tolerance{MaxAbsC: b, MaxAbsH: b}
}

// ToleranceError reports the first row whose residual is out of bounds.
type ToleranceError struct {
	Row    int
	Column string
	Diff   float64
	Bound  float64
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("row %d: |%s|=%.6g exceeds %.6g", e.Row, e.Column, abs(e.Diff), e.Bound)
}

func (e *ToleranceError) Unwrap() error {
	return ErrTolerance
}

// Check returns a *ToleranceError for the first violating row, or nil.
func (r Result) Check(tol Tolerance) error {
	for i, row := range r.Rows {
		if tol.MaxAbsC > 0 && abs(row.DiffC) > tol.MaxAbsC {
			return &ToleranceError{Row: i, Column: "diff_c", Diff: row.DiffC, Bound: tol.MaxAbsC}
		}
		if tol.MaxAbsH > 0 && abs(row.DiffH) > tol.MaxAbsH {
			return &ToleranceError{Row: i, Column: "diff_h", Diff: row.DiffH, Bound: tol.MaxAbsH}
		}
	}
	return nil
}
