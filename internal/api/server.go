// Package api serves comparisons over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/store"
	"github.com/samcharles93/lstmtrace/internal/trace"
	"github.com/samcharles93/lstmtrace/internal/validate"
)

// RunStore is the persistent run database behind /v1/runs.
type RunStore interface {
	validate.Recorder
	Get(ctx context.Context, id string) (store.Run, error)
	List(ctx context.Context, limit int) ([]store.Run, error)
	Delete(ctx context.Context, id string) error
}

// Server serves comparisons computed under a base run configuration that
// requests may override.
type Server struct {
	base        config.Run
	comparisons *ComparisonStore
	runs        RunStore
	clock       store.Clock
	log         logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRunStore persists every comparison and enables /v1/runs.
func WithRunStore(rs RunStore) ServerOption {
	return func(s *Server) { s.runs = rs }
}

// WithClock sets the clock used for comparison timestamps.
func WithClock(c store.Clock) ServerOption {
	return func(s *Server) { s.clock = c }
}

// WithLogger sets the logger passed to every validation.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) { s.log = l }
}

// WithComparisonStore replaces the default in-memory comparison store.
func WithComparisonStore(cs *ComparisonStore) ServerOption {
	return func(s *Server) { s.comparisons = cs }
}

// NewServer returns a Server for base. Without WithComparisonStore it keeps
// the DefaultStoreCapacity most recent comparisons.
func NewServer(base config.Run, opts ...ServerOption) *Server {
	s := &Server{
		base:  base,
		clock: store.LocalClock{},
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.comparisons == nil {
		s.comparisons = NewComparisonStore(DefaultStoreCapacity)
	}
	return s
}

// Register mounts the routes on e. The /v1/runs routes exist only when a
// RunStore is configured.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/comparisons", s.handleCreateComparison)
	e.GET("/v1/comparisons", s.handleListComparisons)
	e.GET("/v1/comparisons/:id", s.handleGetComparison)
	e.GET("/v1/comparisons/:id/summary", s.handleComparisonSummary)
	e.DELETE("/v1/comparisons/:id", s.handleDeleteComparison)
	e.POST("/v1/step", s.handleStep)
	if s.runs != nil {
		e.GET("/v1/runs", s.handleListRuns)
		e.GET("/v1/runs/:id", s.handleGetRun)
		e.DELETE("/v1/runs/:id", s.handleDeleteRun)
	}
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateComparison(c *echo.Context) error {
	source, tbl, run, err := s.readComparisonRequest(c)
	if err != nil {
		return writeRunError(c, err)
	}

	opts := []validate.Option{validate.WithClock(s.clock), validate.WithLogger(s.log)}
	if s.runs != nil {
		opts = append(opts, validate.WithRecorder(s.runs))
	}
	v, err := validate.New(run, opts...)
	if err != nil {
		return writeRunError(c, err)
	}
	rep, err := v.Validate(c.Request().Context(), source, tbl)
	if err != nil {
		return writeRunError(c, err)
	}

	cmp := newComparison(rep, run)
	s.comparisons.Put(cmp)
	return c.JSON(http.StatusOK, cmp)
}

// readComparisonRequest accepts either a CompareRequest JSON body or a raw
// CSV table. CSV requests use the server's run configuration.
func (s *Server) readComparisonRequest(c *echo.Context) (string, *trace.Table, config.Run, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, "text/csv") {
		tbl, err := trace.ReadCSV(c.Request().Body, trace.ReadOptions{})
		if err != nil {
			return "", nil, config.Run{}, err
		}
		return c.QueryParam("source"), tbl, s.base, nil
	}

	req, err := decodeJSON[CompareRequest](c.Request().Body)
	if err != nil {
		return "", nil, config.Run{}, err
	}
	run, err := overrideRun(s.base, req.Weights, req.Scale, req.Tolerance)
	if err != nil {
		return "", nil, config.Run{}, err
	}
	tbl, err := rowsTable(req.Rows)
	if err != nil {
		return "", nil, config.Run{}, err
	}
	return req.Source, tbl, run, nil
}

func newComparison(rep *validate.Report, run config.Run) Comparison {
	samples := rep.Table.Samples()
	rows := make([]ComparisonRow, len(rep.Result.Rows))
	for i, r := range rep.Result.Rows {
		rows[i] = ComparisonRow{Sample: samples[i], Row: r}
	}
	cmp := Comparison{
		ID:        rep.ID,
		Object:    "comparison",
		CreatedAt: rep.StartedAt.Unix(),
		Source:    rep.Source,
		Scale:     float64(run.Scale),
		RowCount:  len(rows),
		Rows:      rows,
		Stats:     ComparisonStats{DiffC: rep.Result.DiffC, DiffH: rep.Result.DiffH},
		Passed:    rep.Passed(),
	}
	if rep.Violation != nil {
		cmp.Failure = rep.Violation.Error()
	}
	return cmp
}

func (s *Server) handleListComparisons(c *echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, ComparisonList{
		Object: "list",
		Data:   s.comparisons.List(limit),
	})
}

func (s *Server) handleGetComparison(c *echo.Context) error {
	cmp, ok := s.comparisons.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "comparison not found")
	}
	return c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleComparisonSummary(c *echo.Context) error {
	cmp, ok := s.comparisons.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "comparison not found")
	}
	var buf bytes.Buffer
	if err := trace.WriteSummary(&buf, cmp.Stats.DiffC, cmp.Stats.DiffH); err != nil {
		return writeRunError(c, err)
	}
	return c.String(http.StatusOK, buf.String())
}

func (s *Server) handleDeleteComparison(c *echo.Context) error {
	id := c.Param("id")
	if !s.comparisons.Delete(id) {
		return writeNotFound(c, "comparison not found")
	}
	return c.JSON(http.StatusOK, DeleteResp{ID: id, Object: "comparison", Deleted: true})
}

func (s *Server) handleStep(c *echo.Context) error {
	req, err := decodeJSON[StepRequest](c.Request().Body)
	if err != nil {
		return writeRunError(c, err)
	}
	run, err := overrideRun(s.base, req.Weights, nil, nil)
	if err != nil {
		return writeRunError(c, err)
	}
	x := req.X
	if req.Raw != nil {
		x = run.Scale.Dequantize(*req.Raw)
	}
	prev := cell.State{C: req.CPrev, H: req.HPrev}
	resp := StepResponse{
		Object: "step",
		X:      x,
		Prev:   prev,
		Gates:  cell.StepGates(x, prev, run.Weights),
	}
	resp.Quantized.C = run.Scale.Quantize(resp.Gates.Next.C)
	resp.Quantized.H = run.Scale.Quantize(resp.Gates.Next.H)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRuns(c *echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return writeRunError(c, err)
	}
	runs, err := s.runs.List(c.Request().Context(), limit)
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"object": "list", "data": runs})
}

func (s *Server) handleGetRun(c *echo.Context) error {
	r, err := s.runs.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return writeNotFound(c, "run not found")
	}
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	err := s.runs.Delete(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return writeNotFound(c, "run not found")
	}
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResp{ID: id, Object: "run", Deleted: true})
}
