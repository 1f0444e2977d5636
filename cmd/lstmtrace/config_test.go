package main

import (
	"context"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

// runConfigFor parses args against the model flags and returns the resulting
// run configuration. Flags are package globals, so callers must not run in
// parallel.
func runConfigFor(t *testing.T, file config.File, args ...string) (config.Run, error) {
	t.Helper()
	prev := appConfig
	appConfig = file
	t.Cleanup(func() {
		appConfig = prev
		weightAssignments = nil
		scale, fracBits, maxAbsC, maxAbsH = 0, 0, 0, 0
	})

	var (
		run    config.Run
		runErr error
	)
	cmd := &cli.Command{
		Name:  "test",
		Flags: modelFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			run, runErr = runConfig(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return run, runErr
}

func TestRunConfigDefaults(t *testing.T) {
	run, err := runConfigFor(t, config.File{})
	if err != nil {
		t.Fatalf("runConfig: %v", err)
	}
	if run.Scale != fixedpoint.Q6_11 {
		t.Fatalf("scale: got %v", run.Scale)
	}
	if run.Tolerance.Enabled() {
		t.Fatalf("tolerance should be disabled by default: %+v", run.Tolerance)
	}
}

func TestRunConfigFlagsOverrideFile(t *testing.T) {
	fileScale := 1024.0
	file := config.File{
		Weights: map[string]float64{"Wfx": 9, "bo": 3},
		Scale:   &fileScale,
	}
	run, err := runConfigFor(t, file, "--weight", "Wfx=2.5", "--frac-bits", "8", "--max-abs-h", "0.01")
	if err != nil {
		t.Fatalf("runConfig: %v", err)
	}
	if run.Weights.Wfx != 2.5 {
		t.Errorf("Wfx: flag should win, got %v", run.Weights.Wfx)
	}
	if run.Weights.Bo != 3 {
		t.Errorf("bo: file value should be kept, got %v", run.Weights.Bo)
	}
	if run.Scale != 256 {
		t.Errorf("scale: got %v want 256", run.Scale)
	}
	if run.Tolerance.MaxAbsH != 0.01 || run.Tolerance.MaxAbsC != 0 {
		t.Errorf("tolerance: %+v", run.Tolerance)
	}
}

func TestRunConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown weight", []string{"--weight", "wfx=1"}},
		{"malformed assignment", []string{"--weight", "Wfx"}},
		{"scale and frac bits", []string{"--scale", "2048", "--frac-bits", "11"}},
		{"zero scale", []string{"--scale", "0"}},
		{"negative tolerance", []string{"--max-abs-c", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runConfigFor(t, config.File{}, tt.args...); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}
