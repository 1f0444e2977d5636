package api

import (
	json "github.com/goccy/go-json"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

// CompareRequest is the JSON body of POST /v1/comparisons. Unset fields
// fall back to the server's run configuration.
type CompareRequest struct {
	Source    string             `json:"source,omitempty"`
	Rows      []RowInput         `json:"rows"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	Scale     *float64           `json:"scale,omitempty"`
	Tolerance *compare.Tolerance `json:"tolerance,omitempty"`
}

// RowInput is one posted row keyed by column name. Keys are kept raw so a
// missing column can be told apart from a zero sample.
type RowInput map[string]json.RawMessage

// ComparisonRow is one input row joined with its comparison.
type ComparisonRow struct {
	trace.Sample
	compare.Row
}

// ComparisonStats holds the residual summaries.
type ComparisonStats struct {
	DiffC compare.Stats `json:"diff_c"`
	DiffH compare.Stats `json:"diff_h"`
}

// Comparison is the resource returned by the comparisons endpoints.
type Comparison struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Source    string          `json:"source,omitempty"`
	Scale     float64         `json:"scale"`
	RowCount  int             `json:"row_count"`
	Rows      []ComparisonRow `json:"rows,omitempty"`
	Stats     ComparisonStats `json:"stats"`
	Passed    bool            `json:"passed"`
	Failure   string          `json:"failure,omitempty"`
}

// ComparisonList is the body of GET /v1/comparisons.
type ComparisonList struct {
	Object string       `json:"object"`
	Data   []Comparison `json:"data"`
}

// DeleteResp confirms a deletion.
type DeleteResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// StepRequest is the body of POST /v1/step. X and the previous state are
// real values; Raw, when set, is dequantized and used instead of X.
type StepRequest struct {
	X       float64            `json:"x"`
	Raw     *int64             `json:"raw,omitempty"`
	CPrev   float64            `json:"c_prev"`
	HPrev   float64            `json:"h_prev"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

// StepResponse reports every intermediate of one cell step.
type StepResponse struct {
	Object string     `json:"object"`
	X      float64    `json:"x"`
	Prev   cell.State `json:"prev"`
	Gates  cell.Gates `json:"gates"`
	// Quantized is the next state rounded to the fixed-point grid.
	Quantized struct {
		C int64 `json:"c"`
		H int64 `json:"h"`
	} `json:"quantized"`
}
