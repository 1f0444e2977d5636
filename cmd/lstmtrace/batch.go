package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

func batchCmd() *cli.Command {
	var (
		workers   int64
		outputDir string
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Compare many hardware traces concurrently",
		ArgsUsage: "<input.csv>...",
		Flags: append(append(modelFlags(), outputFlags()...),
			&cli.Int64Flag{
				Name:        "workers",
				Aliases:     []string{"j"},
				Usage:       "files compared in parallel (default: number of CPUs)",
				Destination: &workers,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Usage:       "directory for annotated outputs (default: next to each input)",
				Destination: &outputDir,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("batch requires at least one input file", 2)
			}
			if appConfig.Workers != nil && !cmd.IsSet("workers") {
				workers = *appConfig.Workers
			}
			if workers <= 0 {
				workers = int64(runtime.NumCPU())
			}
			format, err := trace.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			outputs := batchOutputs(outputDir, paths, format)
			if idx := collisions(outputs); len(idx) > 0 {
				return fmt.Errorf("output %s would be written by more than one input", outputs[idx[0]])
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

			log.Info("starting batch", "files", len(paths), "workers", workers)
			results := v.Batch(ctx, paths, int(workers), trace.ReadOptions{RequireRows: requireRows})

			failed := 0
			for i, r := range results {
				if r.Err != nil {
					failed++
					fmt.Printf("%s: error: %v\n", r.Path, r.Err)
					continue
				}
				out := outputs[i]
				if err := r.Report.Annotated.WriteFile(out, format); err != nil {
					failed++
					fmt.Printf("%s: error: write %s: %v\n", r.Path, out, err)
					continue
				}
				agC, agH := r.Report.Result.Agreement()
				status := "ok"
				if !r.Report.Passed() {
					failed++
					status = "FAIL " + r.Report.Violation.Error()
				}
				fmt.Printf("%s: rows=%d max|diff_c|=%.6e max|diff_h|=%.6e rmse_c=%.6e rmse_h=%.6e -> %s %s\n",
					r.Path, r.Report.Table.Len(), agC.MaxAbs, agH.MaxAbs, agC.RMSE, agH.RMSE, out, status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
}
