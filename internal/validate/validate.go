// Package validate runs the reference model over a hardware trace and
// compares the two.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/sequence"
	"github.com/samcharles93/lstmtrace/internal/store"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

// Recorder persists run summaries.
type Recorder interface {
	Save(ctx context.Context, r *store.Run) (string, error)
}

// Validator compares traces under a fixed run configuration.
type Validator struct {
	run      config.Run
	clock    store.Clock
	recorder Recorder
	log      logger.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used for run timestamps.
func WithClock(c store.Clock) Option {
	return func(v *Validator) { v.clock = c }
}

// WithRecorder persists every completed run.
func WithRecorder(r Recorder) Option {
	return func(v *Validator) { v.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// New returns a Validator for run.
func New(run config.Run, opts ...Option) (*Validator, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}
	v := &Validator{
		run:   run,
		clock: store.LocalClock{},
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Run returns the configuration the Validator was built with.
func (v *Validator) Run() config.Run {
	return v.run
}

// Report is the outcome of one validation.
type Report struct {
	ID        string
	Source    string
	Table     *trace.Table
	Reference []cell.State
	Result    compare.Result
	Annotated *trace.Annotated

	// Violation is the first out-of-tolerance residual, if any.
	Violation error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Passed reports whether every residual is within tolerance.
func (r *Report) Passed() bool {
	return r.Violation == nil
}

// Validate replays tbl through the reference model and compares it with the
// hardware columns. A tolerance violation is reported on the Report, not as
// an error.
func (v *Validator) Validate(ctx context.Context, source string, tbl *trace.Table) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep := &Report{
		Source:    source,
		Table:     tbl,
		StartedAt: v.clock.Now(),
	}
	log := v.log.With("source", source)
	log.Debug("replaying trace", "rows", tbl.Len(), "scale", float64(v.run.Scale))

	rep.Reference = sequence.Run(tbl.X, v.run.Weights, v.run.Scale)
	res, err := compare.Compare(tbl.C, tbl.H, rep.Reference, v.run.Scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	rep.Result = res
	if rep.Annotated, err = trace.Annotate(tbl, res); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	rep.Violation = res.Check(v.run.Tolerance)
	rep.FinishedAt = v.clock.Now()

	maxC, maxH := res.MaxAbs()
	log.Info("comparison complete",
		"rows", tbl.Len(),
		"max_abs_diff_c", maxC,
		"max_abs_diff_h", maxH,
		"passed", rep.Passed(),
	)
	if rep.Violation != nil {
		log.Warn("residual out of tolerance", "error", rep.Violation.Error())
	}

	if v.recorder == nil {
		rep.ID = uuid.NewString()
		return rep, nil
	}
	id, err := v.recorder.Save(ctx, rep.StoreRun(v.run))
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	rep.ID = id
	return rep, nil
}

// ValidateFile reads path and validates it.
func (v *Validator) ValidateFile(ctx context.Context, path string, opts trace.ReadOptions) (*Report, error) {
	tbl, err := trace.ReadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, path, tbl)
}

// StoreRun converts the report to its persisted summary.
func (r *Report) StoreRun(run config.Run) *store.Run {
	sr := &store.Run{
		ID:         r.ID,
		Source:     r.Source,
		Rows:       len(r.Result.Rows),
		Scale:      float64(run.Scale),
		Weights:    run.Weights.Map(),
		DiffC:      r.Result.DiffC,
		DiffH:      r.Result.DiffH,
		Passed:     r.Passed(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Violation != nil {
		sr.Failure = r.Violation.Error()
	}
	return sr
}
