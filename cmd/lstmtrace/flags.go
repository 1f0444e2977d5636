package main

import "github.com/urfave/cli/v3"

var (
	configPath  string
	envFile     string
	logLevel    string
	logFormat   string
	debug       bool
	storeDriver string
	storeDSN    string
	ntpServer   string

	weightAssignments []string
	scale             float64
	fracBits          int64
	maxAbsC           float64
	maxAbsH           float64
)

func rootFlags() []cli.Flag {
	return append(loggingFlags(),
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default $XDG_CONFIG_HOME/lstmtrace/config.yaml)",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "dotenv file loaded before the environment is read",
			Value:       ".env",
			Destination: &envFile,
		},
		&cli.StringFlag{
			Name:        "store-driver",
			Usage:       "run database driver (sqlite, mysql)",
			Destination: &storeDriver,
		},
		&cli.StringFlag{
			Name:        "store-dsn",
			Usage:       "run database DSN; runs are not persisted when empty",
			Destination: &storeDSN,
		},
		&cli.StringFlag{
			Name:        "ntp-server",
			Usage:       "NTP server used to timestamp runs",
			Destination: &ntpServer,
		},
	)
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, text, json)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// modelFlags override the reference model and comparison settings.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "weight",
			Aliases:     []string{"w"},
			Usage:       "override one weight, NAME=VALUE (repeatable)",
			Destination: &weightAssignments,
		},
		&cli.Float64Flag{
			Name:        "scale",
			Usage:       "fixed-point scale factor (default 2048)",
			Destination: &scale,
		},
		&cli.Int64Flag{
			Name:        "frac-bits",
			Usage:       "fixed-point fractional bits; sets scale to 2^bits",
			Destination: &fracBits,
		},
		&cli.Float64Flag{
			Name:        "max-abs-c",
			Usage:       "fail when any |diff_c| exceeds this (0 disables)",
			Destination: &maxAbsC,
		},
		&cli.Float64Flag{
			Name:        "max-abs-h",
			Usage:       "fail when any |diff_h| exceeds this (0 disables)",
			Destination: &maxAbsH,
		},
	}
}
