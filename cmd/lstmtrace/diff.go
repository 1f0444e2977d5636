package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

// traceDiff is the agreement of two hardware traces, column by column.
type traceDiff struct {
	A string            `json:"a"`
	B string            `json:"b"`
	X compare.Agreement `json:"x_t"`
	C compare.Agreement `json:"c_t"`
	H compare.Agreement `json:"h_t"`
}

func diffCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare the dequantized columns of two hardware traces",
		ArgsUsage: "<a.csv> <b.csv>",
		Flags: append(modelFlags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if cmd.Args().Len() != 2 {
				return cli.Exit("diff requires exactly two input files", 2)
			}
			run, err := runConfig(cmd)
			if err != nil {
				return err
			}
			pathA, pathB := cmd.Args().Get(0), cmd.Args().Get(1)
			a, err := trace.ReadFile(pathA, trace.ReadOptions{})
			if err != nil {
				return err
			}
			b, err := trace.ReadFile(pathB, trace.ReadOptions{})
			if err != nil {
				return err
			}
			if a.Len() != b.Len() {
				log.Warn("traces differ in length; comparing the common prefix",
					"a_rows", a.Len(), "b_rows", b.Len())
			}

			s := run.Scale
			d := traceDiff{
				A: pathA,
				B: pathB,
				X: compare.Agree(s.DequantizeAll(a.X), s.DequantizeAll(b.X)),
				C: compare.Agree(s.DequantizeAll(a.C), s.DequantizeAll(b.C)),
				H: compare.Agree(s.DequantizeAll(a.H), s.DequantizeAll(b.H)),
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(d)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "COLUMN\tROWS\tMAX_ABS\tMEAN_ABS\tRMSE\tCOSINE\tFIRST_DIFF")
			for _, col := range []struct {
				name string
				ag   compare.Agreement
			}{{trace.ColX, d.X}, {trace.ColC, d.C}, {trace.ColH, d.H}} {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%.6e\t%.6e\t%.6e\t%.6f\t%d\n",
					col.name, col.ag.N, col.ag.MaxAbs, col.ag.MeanAbs, col.ag.RMSE, col.ag.Cosine, col.ag.FirstDiff)
			}
			return tw.Flush()
		},
	}
}
