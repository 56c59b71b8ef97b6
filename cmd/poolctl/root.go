package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dosada05/judo-pools/app"
	"github.com/Dosada05/judo-pools/config"
)

var (
	flagLogLevel string
	logger       *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Offline tooling for judo pool tournaments",
		Long:  "poolctl inspects pools, balances tables, exports score sheets and seeds data against the tournament database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
				return err
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newPairingsCmd(),
		newStatusCmd(),
		newBalanceCmd(),
		newExportCmd(),
		newSeedCmd(),
		newDemoCmd(),
	)
	return root
}

// withApp opens the database for the duration of fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
