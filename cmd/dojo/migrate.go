package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/okian/dojo/internal/adapters/repository/pgstore"
	"github.com/okian/dojo/internal/adapters/repository/pgstore/migrations"
	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
	Long:  "Applies or rolls back the bun migrations of the dojo schema. Requires store=postgres.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigration(cmd.Context(), "up", migrations.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigration(cmd.Context(), "down", migrations.Down)
	},
}

type migrationFunc func(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error)

func runMigration(ctx context.Context, direction string, run migrationFunc) error {
	if cfg.Store != config.StorePostgres {
		return eris.Errorf("migrate: store is %q, want %q", cfg.Store, config.StorePostgres)
	}

	store := pgstore.Open(cfg.PostgresDSN)
	defer func() { _ = store.Close() }()
	if err := store.Ping(ctx); err != nil {
		return err
	}

	group, err := run(ctx, store.DB())
	if err != nil {
		return eris.Wrapf(err, "migrate %s", direction)
	}

	log := logger.Named("migrate")
	if group.IsZero() {
		log.Info(ctx, "nothing to migrate", logger.String("direction", direction))
		return nil
	}
	log.Info(ctx, "migrations applied",
		logger.String("direction", direction),
		logger.String("group", group.String()),
	)
	return nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
