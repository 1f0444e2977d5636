// Package compare aligns a dequantized hardware trace with the floating
// reference and summarises the residuals.
package compare

import (
	"errors"
	"fmt"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

// ErrLengthMismatch is returned when the hardware columns and the reference
// trace have different lengths.
var ErrLengthMismatch = errors.New("compare: length mismatch")

// Row is one aligned sample. Diffs are hardware minus reference.
type Row struct {
	FloatC float64 `json:"float_c_t"`
	FloatH float64 `json:"float_h_t"`
	HWC    float64 `json:"hw_c_float"`
	HWH    float64 `json:"hw_h_float"`
	DiffC  float64 `json:"diff_c"`
	DiffH  float64 `json:"diff_h"`
}

// Result is the full comparison of one trace.
type Result struct {
	Rows  []Row `json:"rows"`
	DiffC Stats `json:"diff_c"`
	DiffH Stats `json:"diff_h"`
}

// Compare dequantizes the hardware columns and pairs them row by row with ref.
func Compare(hwC, hwH []int64, ref []cell.State, scale fixedpoint.Scale) (Result, error) {
	if len(hwC) != len(ref) || len(hwH) != len(ref) {
		return Result{}, fmt.Errorf("%w: c_t=%d h_t=%d reference=%d", ErrLengthMismatch, len(hwC), len(hwH), len(ref))
	}
	if err := scale.Validate(); err != nil {
		return Result{}, err
	}

	rows := make([]Row, len(ref))
	diffC := make([]float64, len(ref))
	diffH := make([]float64, len(ref))
	for i, st := range ref {
		r := Row{
			FloatC: st.C,
			FloatH: st.H,
			HWC:    scale.Dequantize(hwC[i]),
			HWH:    scale.Dequantize(hwH[i]),
		}
		r.DiffC = r.HWC - r.FloatC
		r.DiffH = r.HWH - r.FloatH
		rows[i] = r
		diffC[i] = r.DiffC
		diffH[i] = r.DiffH
	}

	return Result{
		Rows:  rows,
		DiffC: Describe(diffC),
		DiffH: Describe(diffH),
	}, nil
}

// MaxAbs returns the largest absolute residual of each column.
func (r Result) MaxAbs() (c, h float64) {
	for _, row := range r.Rows {
		c = max(c, abs(row.DiffC))
		h = max(h, abs(row.DiffH))
	}
	return c, h
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
