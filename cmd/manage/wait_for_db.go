package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
)

var (
	waitInterval time.Duration
	waitTimeout  time.Duration
)

var waitForDBCmd = &cobra.Command{
	Use:   "wait-for-db",
	Short: "Block until the database accepts connections",
	Long: `Ping the configured postgres database until it answers.

Use it in container entrypoints before running migrations or the server.
A zero --timeout waits forever.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := pginfra.OpenSQL(cfg.PostgresDSN())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, waitTimeout)
			defer cancel()
		}
		return pginfra.WaitForDB(ctx, db, waitInterval, logger)
	},
}

func init() {
	waitForDBCmd.Flags().DurationVar(&waitInterval, "interval", time.Second, "delay between attempts")
	waitForDBCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "give up after this long (0 = never)")
}
