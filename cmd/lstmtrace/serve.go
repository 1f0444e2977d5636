package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/api"
	"github.com/samcharles93/lstmtrace/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		capacity    int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the comparison REST API",
		Flags: append(modelFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "keep",
				Usage:       "comparisons kept in memory",
				Value:       api.DefaultStoreCapacity,
				Destination: &capacity,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if appConfig.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = appConfig.ServerAddress
			}
			run, err := runConfig(cmd)
			if err != nil {
				return err
			}

			opts := []api.ServerOption{
				api.WithLogger(log),
				api.WithClock(clock(log)),
				api.WithComparisonStore(api.NewComparisonStore(int(capacity))),
			}
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer func() { _ = st.Close() }()
				opts = append(opts, api.WithRunStore(st))
				log.Info("persisting runs", "driver", st.Driver())
			}

			server := api.NewServer(run, opts...)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "scale", run.Scale.String())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
