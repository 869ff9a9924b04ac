package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "manage",
	Short:         "Operational commands for recipe-api",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logger = helpers.NewLogger(cfg.AppName+"-manage", cfg.Env)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(waitForDBCmd, migrateCmd, createSuperuserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
