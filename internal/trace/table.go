// Package trace reads hardware trace tables and writes annotated comparisons.
package trace

import (
	"math"
	"strconv"
	"strings"
)

// Required input columns.
const (
	ColX = "x_t"
	ColC = "c_t"
	ColH = "h_t"
)

// Derived output columns, in the order they are appended.
var DerivedColumns = []string{
	"float_c_t",
	"float_h_t",
	"hw_c_float",
	"hw_h_float",
	"diff_c",
	"diff_h",
}

// Sample is one raw hardware row.
type Sample struct {
	X int64 `json:"x_t"`
	C int64 `json:"c_t"`
	H int64 `json:"h_t"`
}

// Table is an input table. Header and Records keep every original column
// verbatim; X, C and H hold the parsed required columns.
type Table struct {
	Header  []string
	Records [][]string

	X []int64
	C []int64
	H []int64
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.X)
}

// Samples returns the parsed rows.
func (t *Table) Samples() []Sample {
	out := make([]Sample, t.Len())
	for i := range out {
		out[i] = Sample{X: t.X[i], C: t.C[i], H: t.H[i]}
	}
	return out
}

// FromSamples builds a table holding only the required columns.
func FromSamples(samples []Sample) *Table {
	t := &Table{
		Header:  []string{ColX, ColC, ColH},
		Records: make([][]string, len(samples)),
		X:       make([]int64, len(samples)),
		C:       make([]int64, len(samples)),
		H:       make([]int64, len(samples)),
	}
	for i, s := range samples {
		t.Records[i] = []string{
			strconv.FormatInt(s.X, 10),
			strconv.FormatInt(s.C, 10),
			strconv.FormatInt(s.H, 10),
		}
		t.X[i], t.C[i], t.H[i] = s.X, s.C, s.H
	}
	return t
}

// ParseCell parses one raw fixed-point sample of column at data row row,
// returning a *SchemaError when it is not an integer.
func ParseCell(column string, row int, value string) (int64, error) {
	v, reason, ok := parseRaw(value)
	if !ok {
		return 0, &SchemaError{Column: column, Row: row, Value: value, Reason: reason}
	}
	return v, nil
}

// parseRaw accepts integers and integral decimals such as "12.0".
func parseRaw(s string) (int64, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "empty value", false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, "", true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "not a number", false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "not a finite number", false
	}
	if f != math.Trunc(f) {
		return 0, "not an integer fixed-point sample", false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, "out of int64 range", false
	}
	return int64(f), "", true
}
