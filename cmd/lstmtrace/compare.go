package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/trace"
	"github.com/samcharles93/lstmtrace/internal/validate"
)

var (
	outputFormat string
	requireRows  bool
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format (csv, json)",
			Value:       "csv",
			Destination: &outputFormat,
		},
		&cli.BoolFlag{
			Name:        "require-rows",
			Usage:       "fail on input with no data rows",
			Destination: &requireRows,
		},
	}
}

func compareCmd() *cli.Command {
	var output string

	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare one hardware trace against the reference model",
		ArgsUsage: "[input.csv]",
		Flags: append(append(modelFlags(), outputFlags()...),
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "annotated output path (default hw_vs_float_comparison.csv)",
				Destination: &output,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if cmd.Args().Len() > 1 {
				return cli.Exit("compare takes at most one input file", 2)
			}
			format, err := trace.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			run, err := runConfig(cmd)
			if err != nil {
				return err
			}
			v, closeFn, err := newValidator(ctx, run, log)
			if err != nil {
				return err
			}
			defer closeFn()

			input := resolveInput(cmd.Args().First())
			rep, err := v.ValidateFile(ctx, input, trace.ReadOptions{RequireRows: requireRows})
			if err != nil {
				return err
			}
			outPath := resolveOutput(output, format)
			if err := rep.Annotated.WriteFile(outPath, format); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Printf("Comparison saved to: %s\n", outPath)
			if err := trace.WriteSummary(os.Stdout, rep.Result.DiffC, rep.Result.DiffH); err != nil {
				return err
			}
			if rep.Violation != nil {
				return fmt.Errorf("%s: %w", input, rep.Violation)
			}
			return nil
		},
	}
}

// newValidator wires the configured clock and, if a run database is
// configured, the recorder. The returned func closes the database.
func newValidator(ctx context.Context, run config.Run, log logger.Logger) (*validate.Validator, func(), error) {
	opts := []validate.Option{
		validate.WithLogger(log),
		validate.WithClock(clock(log)),
	}
	closeFn := func() {}
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if st != nil {
		opts = append(opts, validate.WithRecorder(st))
		closeFn = func() {
			if err := st.Close(); err != nil {
				log.Warn("close run store", "error", err)
			}
		}
	}
	v, err := validate.New(run, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return v, closeFn, nil
}
