package trace

import (
	"fmt"
	"io"
	"math"

	"github.com/samcharles93/lstmtrace/internal/compare"
)

// WriteSummary prints the residual statistics as a describe-style table.
func WriteSummary(w io.Writer, c, h compare.Stats) error {
	rows := []struct {
		label string
		c, h  float64
	}{
		{"count", float64(c.Count), float64(h.Count)},
		{"mean", c.Mean, h.Mean},
		{"std", c.Std, h.Std},
		{"min", c.Min, h.Min},
		{"25%", c.P25, h.P25},
		{"50%", c.P50, h.P50},
		{"75%", c.P75, h.P75},
		{"max", c.Max, h.Max},
	}
	if _, err := fmt.Fprintf(w, "%-6s %14s %14s\n", "", "diff_c", "diff_h"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-6s %14s %14s\n", r.label, summaryCell(r.c), summaryCell(r.h)); err != nil {
			return err
		}
	}
	return nil
}

func summaryCell(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6e", v)
}
