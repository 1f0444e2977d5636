package validate

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/samcharles93/lstmtrace/internal/trace"
)

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	Path   string
	Report *Report
	Err    error
}

// Batch validates every path with at most workers files in flight. Each
// file's recurrence still runs sequentially on one goroutine. Results are
// returned in the order of paths; a failing file does not stop the others.
func (v *Validator) Batch(ctx context.Context, paths []string, workers int, opts trace.ReadOptions) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]BatchResult, len(paths))
	p := pool.New().WithMaxGoroutines(workers)
	for i, path := range paths {
		p.Go(func() {
			rep, err := v.ValidateFile(ctx, path, opts)
			results[i] = BatchResult{Path: path, Report: rep, Err: err}
		})
	}
	p.Wait()
	return results
}
