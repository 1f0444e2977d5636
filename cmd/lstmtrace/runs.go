package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lstmtrace/internal/config"
	"github.com/samcharles93/lstmtrace/internal/store"
	"github.com/samcharles93/lstmtrace/internal/trace"
)

func runsCmd() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect persisted comparison runs",
		Commands: []*cli.Command{
			runsListCmd(),
			runsShowCmd(),
			runsDeleteCmd(),
		},
	}
}

func withStore(ctx context.Context, fn func(*store.Store) error) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New("no run database configured; set --store-dsn, store.dsn or " + config.EnvStoreDSN)
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

func runsListCmd() *cli.Command {
	var limit int64

	return &cli.Command{
		Name:  "list",
		Usage: "List runs, newest first",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum runs listed (0 for all)",
				Value:       20,
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(ctx, func(st *store.Store) error {
				runs, err := st.List(ctx, int(limit))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tROWS\tPASSED")
				for _, r := range runs {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\n",
						r.ID, r.StartedAt.Local().Format(time.DateTime), r.Source, r.Rows, r.Passed)
				}
				return tw.Flush()
			})
		},
	}
}

func runsShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one run and its residual summary",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return cli.Exit("runs show requires an id", 2)
			}
			return withStore(ctx, func(st *store.Store) error {
				r, err := st.Get(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("id:       %s\n", r.ID)
				fmt.Printf("source:   %s\n", r.Source)
				fmt.Printf("rows:     %d\n", r.Rows)
				fmt.Printf("scale:    %g\n", r.Scale)
				fmt.Printf("started:  %s\n", r.StartedAt.Format(time.RFC3339Nano))
				fmt.Printf("duration: %s\n", r.FinishedAt.Sub(r.StartedAt))
				fmt.Printf("passed:   %v\n", r.Passed)
				if r.Failure != "" {
					fmt.Printf("failure:  %s\n", r.Failure)
				}
				fmt.Println()
				return trace.WriteSummary(os.Stdout, r.DiffC, r.DiffH)
			})
		},
	}
}

func runsDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete runs",
		ArgsUsage: "<id>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				return cli.Exit("runs delete requires at least one id", 2)
			}
			return withStore(ctx, func(st *store.Store) error {
				for _, id := range ids {
					if err := st.Delete(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted %s\n", id)
				}
				return nil
			})
		},
	}
}
