package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
	"github.com/samcharles93/lstmtrace/internal/logger"
	"github.com/samcharles93/lstmtrace/internal/store"
)

// appConfig is the config file merged with the environment, loaded once by
// setup before any command runs.
var appConfig config.File

// setup loads the dotenv file and config, then installs the logger on ctx.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return ctx, err
	}
	path := configPath
	if path == "" {
		path = config.Path()
	}
	f, err := config.Load(path)
	if err != nil {
		return ctx, err
	}
	appConfig = f.Resolve()
	applyRootConfig(cmd, appConfig)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.NewFromOptions(os.Stderr, logger.Options{
		Level:  logger.ParseLevel(level),
		Format: logFormat,
	})
	if err != nil {
		return ctx, err
	}
	log.Debug("configuration loaded", "path", path, "store_driver", storeDriver)
	return logger.WithContext(ctx, log), nil
}

// applyRootConfig applies config file defaults to the global flags that
// were not explicitly set.
func applyRootConfig(c *cli.Command, cfg config.File) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.Store.Driver != "" && !c.IsSet("store-driver") {
		storeDriver = cfg.Store.Driver
	}
	if cfg.Store.DSN != "" && !c.IsSet("store-dsn") {
		storeDSN = cfg.Store.DSN
	}
	if cfg.NTPServer != "" && !c.IsSet("ntp-server") {
		ntpServer = cfg.NTPServer
	}
}

// runConfig builds the per-run configuration: config file values, then any
// model flags set on c.
func runConfig(c *cli.Command) (config.Run, error) {
	run, err := appConfig.Run()
	if err != nil {
		return config.Run{}, err
	}
	for _, a := range weightAssignments {
		name, v, err := cell.ParseAssignment(a)
		if err != nil {
			return config.Run{}, err
		}
		if run.Weights, err = run.Weights.With(name, v); err != nil {
			return config.Run{}, err
		}
	}
	switch {
	case c.IsSet("scale") && c.IsSet("frac-bits"):
		return config.Run{}, fmt.Errorf("--scale and --frac-bits are mutually exclusive")
	case c.IsSet("scale"):
		run.Scale = fixedpoint.Scale(scale)
	case c.IsSet("frac-bits"):
		s, err := fixedpoint.FromFracBits(int(fracBits))
		if err != nil {
			return config.Run{}, err
		}
		run.Scale = s
	}
	if c.IsSet("max-abs-c") {
		run.Tolerance.MaxAbsC = maxAbsC
	}
	if c.IsSet("max-abs-h") {
		run.Tolerance.MaxAbsH = maxAbsH
	}
	if err := run.Validate(); err != nil {
		return config.Run{}, err
	}
	return run, nil
}

// openStore opens the configured run database, or returns nil when no DSN
// is configured.
func openStore(ctx context.Context) (*store.Store, error) {
	if storeDSN == "" {
		return nil, nil
	}
	return store.Open(ctx, storeDriver, storeDSN)
}

// clock returns the run clock, reporting NTP failures once.
func clock(log logger.Logger) store.Clock {
	c := store.NewClock(ntpServer)
	if ntp, ok := c.(*store.NTPClock); ok {
		if err := ntp.Err(); err != nil {
			log.Warn("ntp query failed, using local clock", "server", ntpServer, "error", err)
		}
	}
	return c
}
