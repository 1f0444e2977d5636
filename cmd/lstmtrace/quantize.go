package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func quantizeCmd() *cli.Command {
	var (
		value float64
		raw   int64
	)

	return &cli.Command{
		Name:  "quantize",
		Usage: "Convert between real values and raw fixed-point integers",
		Flags: append(modelFlags(),
			&cli.Float64Flag{
				Name:        "value",
				Aliases:     []string{"v"},
				Usage:       "real value to quantize",
				Destination: &value,
			},
			&cli.Int64Flag{
				Name:        "raw",
				Aliases:     []string{"r"},
				Usage:       "raw integer to dequantize",
				Destination: &raw,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			run, err := runConfig(cmd)
			if err != nil {
				return err
			}
			s := run.Scale
			switch {
			case cmd.IsSet("value") && cmd.IsSet("raw"):
				return cli.Exit("--value and --raw are mutually exclusive", 2)
			case cmd.IsSet("value"):
				q := s.Quantize(value)
				fmt.Printf("%d\t(%.9g, error %.3g, scale %s)\n", q, s.Dequantize(q), s.Dequantize(q)-value, s)
			case cmd.IsSet("raw"):
				fmt.Printf("%.9g\t(scale %s)\n", s.Dequantize(raw), s)
			default:
				return cli.Exit("one of --value or --raw is required", 2)
			}
			return nil
		},
	}
}
