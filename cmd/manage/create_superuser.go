package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/recipe-api/internal/application"
	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/recipe-api/pkg/helpers"
)

var superuser struct {
	email    string
	password string
	name     string
}

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create a staff account with every permission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DBDriver != "postgres" {
			return errors.New("create-superuser needs DB_DRIVER=postgres")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		store := pginfra.NewStore(pool)
		jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL, cfg.AppName)
		svc := application.NewUserService(store.Users, jwt, nil, nil, cfg, logger)

		u, err := svc.CreateSuperuser(ctx, superuser.email, superuser.password, superuser.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "superuser created: id=%d email=%s\n", u.ID, u.Email)
		return nil
	},
}

func init() {
	f := createSuperuserCmd.Flags()
	f.StringVar(&superuser.email, "email", "", "account email (required)")
	f.StringVar(&superuser.password, "password", "", "account password (required)")
	f.StringVar(&superuser.name, "name", "", "display name")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
