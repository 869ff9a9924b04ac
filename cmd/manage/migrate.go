package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the embedded schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := pginfra.OpenSQL(cfg.PostgresDSN())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		switch args[0] {
		case "up":
			err = pginfra.MigrateUp(db, logger)
		case "down":
			err = pginfra.MigrateDown(db, logger)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		return nil
	},
}
