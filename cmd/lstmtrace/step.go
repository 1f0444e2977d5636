package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/cell"
)

func stepCmd() *cli.Command {
	var (
		x, cPrev, hPrev float64
		raw             int64
		asJSON          bool
	)

	return &cli.Command{
		Name:  "step",
		Usage: "Run one reference cell step and print every gate",
		Flags: append(modelFlags(),
			&cli.Float64Flag{
				Name:        "x",
				Usage:       "real-valued input",
				Destination: &x,
			},
			&cli.Int64Flag{
				Name:        "raw",
				Usage:       "raw fixed-point input; dequantized and used instead of --x",
				Destination: &raw,
			},
			&cli.Float64Flag{
				Name:        "c-prev",
				Usage:       "previous cell state",
				Destination: &cPrev,
			},
			&cli.Float64Flag{
				Name:        "h-prev",
				Usage:       "previous hidden state",
				Destination: &hPrev,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			run, err := runConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("raw") {
				if cmd.IsSet("x") {
					return cli.Exit("--x and --raw are mutually exclusive", 2)
				}
				x = run.Scale.Dequantize(raw)
			}
			prev := cell.State{C: cPrev, H: hPrev}
			g := cell.StepGates(x, prev, run.Weights)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(g)
			}
			fmt.Printf("x      %.9g\n", x)
			fmt.Printf("prev   c=%.9g h=%.9g\n", prev.C, prev.H)
			fmt.Printf("f      pre=%.9g act=%.9g\n", g.FPre, g.F)
			fmt.Printf("i      pre=%.9g act=%.9g\n", g.IPre, g.I)
			fmt.Printf("g      pre=%.9g act=%.9g\n", g.GPre, g.G)
			fmt.Printf("o      pre=%.9g act=%.9g\n", g.OPre, g.O)
			fmt.Printf("next   c=%.9g h=%.9g\n", g.Next.C, g.Next.H)
			fmt.Printf("raw    c=%d h=%d (scale %s)\n",
				run.Scale.Quantize(g.Next.C), run.Scale.Quantize(g.Next.H), run.Scale)
			return nil
		},
	}
}
