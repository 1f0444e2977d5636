package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType, Param: param},
	})
}

// writeRunError maps validation failures to 400 and everything else to 500.
func writeRunError(c *echo.Context, err error) error {
	var se *trace.SchemaError
	switch {
	case errors.As(err, &se):
		return writeError(c, http.StatusBadRequest, "schema_error", se.Error(), se.Column)
	case errors.Is(err, trace.ErrSchema),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, cell.ErrUnknownWeight),
		errors.Is(err, fixedpoint.ErrInvalidScale),
		errors.Is(err, compare.ErrLengthMismatch):
		return writeBadRequest(c, err.Error())
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest("invalid JSON body: " + err.Error())
	}
	return out, nil
}

// overrideRun layers per-request settings over the server defaults.
func overrideRun(base config.Run, weights map[string]float64, scale *float64, tol *compare.Tolerance) (config.Run, error) {
	run := base
	w, err := run.Weights.Override(weights)
	if err != nil {
		return config.Run{}, err
	}
	run.Weights = w
	if scale != nil {
		run.Scale = fixedpoint.Scale(*scale)
	}
	if tol != nil {
		run.Tolerance = *tol
	}
	if err := run.Validate(); err != nil {
		return config.Run{}, newInvalidRequest(err.Error())
	}
	return run, nil
}

// rowsTable validates posted rows the way ReadCSV validates a file: every
// row must carry an integer x_t, c_t and h_t.
func rowsTable(rows []RowInput) (*trace.Table, error) {
	samples := make([]trace.Sample, len(rows))
	for i, row := range rows {
		var vals [3]int64
		for k, col := range []string{trace.ColX, trace.ColC, trace.ColH} {
			raw, ok := row[col]
			if !ok {
				return nil, &trace.SchemaError{Column: col, Row: i, Reason: "missing required column"}
			}
			v, err := rawSample(col, i, raw)
			if err != nil {
				return nil, err
			}
			vals[k] = v
		}
		samples[i] = trace.Sample{X: vals[0], C: vals[1], H: vals[2]}
	}
	return trace.FromSamples(samples), nil
}

func rawSample(col string, row int, raw json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || (text[0] != '-' && (text[0] < '0' || text[0] > '9')) {
		return 0, &trace.SchemaError{Column: col, Row: row, Value: text, Reason: "not a number"}
	}
	return trace.ParseCell(col, row, text)
}

func queryLimit(c *echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, newInvalidRequest("limit must be a non-negative integer")
	}
	return n, nil
}
