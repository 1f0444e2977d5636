package trace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
	"github.com/samcharles93/lstmtrace/internal/sequence"
)

const sampleCSV = `cycle,x_t,c_t,h_t,note
0,0,0,0,reset
1,2048,1200,700,first
2,-512,1500,810,second
`

func compareTable(t *testing.T, tbl *Table) compare.Result {
	t.Helper()
	ref := sequence.Run(tbl.X, cell.DefaultWeights(), fixedpoint.Q6_11)
	res, err := compare.Compare(tbl.C, tbl.H, ref, fixedpoint.Q6_11)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	return res
}

func TestReadCSV(t *testing.T) {
	t.Parallel()
	tbl, err := ReadCSV(strings.NewReader(sampleCSV), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("rows: got %d", tbl.Len())
	}
	if tbl.X[1] != 2048 || tbl.C[2] != 1500 || tbl.H[1] != 700 {
		t.Fatalf("parsed columns: X=%v C=%v H=%v", tbl.X, tbl.C, tbl.H)
	}
	if got := strings.Join(tbl.Header, ","); got != "cycle,x_t,c_t,h_t,note" {
		t.Fatalf("header: %q", got)
	}
	s := tbl.Samples()
	if s[2] != (Sample{X: -512, C: 1500, H: 810}) {
		t.Fatalf("samples: %+v", s)
	}
}

func TestReadCSVIntegralDecimalsAndBOM(t *testing.T) {
	t.Parallel()
	in := "\ufeffx_t,c_t,h_t\n2048.0, 12 ,-3\n"
	tbl, err := ReadCSV(strings.NewReader(in), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.X[0] != 2048 || tbl.C[0] != 12 || tbl.H[0] != -3 {
		t.Fatalf("parsed: %+v", tbl.Samples())
	}
}

func TestReadCSVSchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		column string
		row    int
	}{
		{"missing x_t", "c_t,h_t\n1,2\n", ColX, -1},
		{"missing h_t", "x_t,c_t\n1,2\n", ColH, -1},
		{"no header", "", ColX, -1},
		{"non-numeric", "x_t,c_t,h_t\n1,2,3\n4,abc,6\n", ColC, 1},
		{"fractional", "x_t,c_t,h_t\n1.5,2,3\n", ColX, 0},
		{"empty cell", "x_t,c_t,h_t\n1,2,\n", ColH, 0},
		{"nan", "x_t,c_t,h_t\nNaN,2,3\n", ColX, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := ReadCSV(strings.NewReader(tc.in), ReadOptions{})
			if tbl != nil {
				t.Fatalf("expected no table on schema error")
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("SchemaError should unwrap to ErrSchema")
			}
			if se.Column != tc.column || se.Row != tc.row {
				t.Fatalf("got column=%q row=%d, want %q %d", se.Column, se.Row, tc.column, tc.row)
			}
		})
	}
}

func TestReadCSVRaggedRow(t *testing.T) {
	t.Parallel()
	_, err := ReadCSV(strings.NewReader("x_t,c_t,h_t\n1,2,3\n4,5\n"), ReadOptions{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestReadCSVEmptyPolicy(t *testing.T) {
	t.Parallel()
	tbl, err := ReadCSV(strings.NewReader("x_t,c_t,h_t\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("empty table should be accepted by default: %v", err)
	}
	if tbl.Len() != 0 {
		t.Fatalf("rows: %d", tbl.Len())
	}

	_, err = ReadCSV(strings.NewReader("x_t,c_t,h_t\n"), ReadOptions{RequireRows: true})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAnnotatePreservesColumns(t *testing.T) {
	t.Parallel()
	tbl, err := ReadCSV(strings.NewReader(sampleCSV), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	res := compareTable(t, tbl)
	a, err := Annotate(tbl, res)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	want := append([]string{"cycle", "x_t", "c_t", "h_t", "note"}, DerivedColumns...)
	if strings.Join(a.Header, ",") != strings.Join(want, ",") {
		t.Fatalf("header: got %v want %v", a.Header, want)
	}
	if len(a.Records) != tbl.Len() {
		t.Fatalf("row count: got %d want %d", len(a.Records), tbl.Len())
	}
	for i, rec := range a.Records {
		for j := range tbl.Header {
			if rec[j] != tbl.Records[i][j] {
				t.Fatalf("row %d col %d changed: %q -> %q", i, j, tbl.Records[i][j], rec[j])
			}
		}
	}
	if a.Records[0][5] != "0" || a.Records[0][10] != "0" {
		t.Fatalf("reset row: %v", a.Records[0])
	}
}

func TestAnnotateOverwritesExistingDerivedColumn(t *testing.T) {
	t.Parallel()
	in := "x_t,diff_c,c_t,h_t\n0,stale,0,0\n"
	tbl, err := ReadCSV(strings.NewReader(in), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	a, err := Annotate(tbl, compareTable(t, tbl))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(a.Header) != 4+len(DerivedColumns)-1 {
		t.Fatalf("header: %v", a.Header)
	}
	if a.Header[1] != "diff_c" || a.Records[0][1] != "0" {
		t.Fatalf("diff_c not overwritten in place: %v %v", a.Header, a.Records[0])
	}
}

func TestAnnotateLengthMismatch(t *testing.T) {
	t.Parallel()
	tbl := FromSamples([]Sample{{}, {}})
	_, err := Annotate(tbl, compare.Result{Rows: make([]compare.Row, 1)})
	if !errors.Is(err, compare.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	t.Parallel()
	tbl, err := ReadCSV(strings.NewReader(sampleCSV), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	a, err := Annotate(tbl, compareTable(t, tbl))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	var buf bytes.Buffer
	if err := a.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := ReadCSV(&buf, ReadOptions{})
	if err != nil {
		t.Fatalf("re-read output: %v", err)
	}
	if back.Len() != tbl.Len() || len(back.Header) != len(a.Header) {
		t.Fatalf("round trip changed shape: %d rows %d cols", back.Len(), len(back.Header))
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	tbl := FromSamples([]Sample{{X: 0}, {X: 2048, C: 100, H: 50}})
	a, err := Annotate(tbl, compareTable(t, tbl))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	var buf bytes.Buffer
	if err := a.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var doc struct {
		Columns []string `json:"columns"`
		Data    [][]any  `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Columns) != 9 || len(doc.Data) != 2 {
		t.Fatalf("shape: %d columns %d rows", len(doc.Columns), len(doc.Data))
	}
	if doc.Data[1][0] != 2048.0 {
		t.Fatalf("x_t should be numeric, got %T %v", doc.Data[1][0], doc.Data[1][0])
	}
}

func TestWriteFileAndReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := filepath.Join(dir, "hw_results.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	tbl, err := ReadFile(in, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	a, err := Annotate(tbl, compareTable(t, tbl))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	out := filepath.Join(dir, "nested", "out.csv")
	if err := a.WriteFile(out, FormatCSV); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(raw), "cycle,x_t,c_t,h_t,note,float_c_t") {
		t.Fatalf("unexpected output header: %s", raw)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.csv"), ReadOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, "json": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got %q %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := compare.Describe([]float64{0.001, -0.002})
	h := compare.Describe(nil)
	if err := WriteSummary(&buf, c, h); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected header plus 8 stat rows, got %d:\n%s", len(lines), out)
	}
	for i, label := range []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"} {
		if !strings.HasPrefix(lines[i+1], label) {
			t.Errorf("line %d: expected %q, got %q", i+1, label, lines[i+1])
		}
	}
	if !strings.Contains(lines[0], "diff_c") || !strings.Contains(lines[0], "diff_h") {
		t.Fatalf("header: %q", lines[0])
	}
	if !strings.Contains(lines[2], "NaN") {
		t.Fatalf("empty column mean should be NaN: %q", lines[2])
	}
}
