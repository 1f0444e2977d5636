package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/lstmtrace/internal/compare"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (csv, json)", s)
}

// Annotated is an input table joined with its comparison rows.
type Annotated struct {
	Header  []string
	Records [][]string
}

// Annotate appends the derived columns to every input row. A derived column
// that already exists in the input is overwritten in place.
func Annotate(t *Table, res compare.Result) (*Annotated, error) {
	if len(res.Rows) != t.Len() {
		return nil, fmt.Errorf("%w: table=%d comparison=%d", compare.ErrLengthMismatch, t.Len(), len(res.Rows))
	}

	header := append([]string(nil), t.Header...)
	pos := make([]int, len(DerivedColumns))
	for i, name := range DerivedColumns {
		pos[i] = -1
		for j, h := range header {
			if h == name {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			pos[i] = len(header)
			header = append(header, name)
		}
	}

	records := make([][]string, len(t.Records))
	for r, rec := range t.Records {
		out := make([]string, len(header))
		copy(out, rec)
		row := res.Rows[r]
		vals := [...]float64{row.FloatC, row.FloatH, row.HWC, row.HWH, row.DiffC, row.DiffH}
		for i, v := range vals {
			out[pos[i]] = formatFloat(v)
		}
		records[r] = out
	}
	return &Annotated{Header: header, Records: records}, nil
}

// WriteCSV writes the annotated table with a header row.
func (a *Annotated) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(a.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(a.Records); err != nil {
		return err
	}
	return cw.Error()
}

type splitJSON struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// WriteJSON writes the table as {"columns": [...], "data": [[...], ...]}.
// Cells that parse as numbers are emitted as numbers.
func (a *Annotated) WriteJSON(w io.Writer) error {
	doc := splitJSON{Columns: a.Header, Data: make([][]any, len(a.Records))}
	for i, rec := range a.Records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = jsonCell(cell)
		}
		doc.Data[i] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteFile writes the table to path in the given format, creating parent
// directories as needed.
func (a *Annotated) WriteFile(path string, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		err = a.WriteJSON(f)
	default:
		err = a.WriteCSV(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func jsonCell(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
