package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	corecfg "github.com/aevon-lab/project-indica/internal/core/config"
	"github.com/aevon-lab/project-indica/internal/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withPostgres(func(a migrationTarget) error {
				return migrations.RunMigrations(a.DB(), true)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withPostgres(func(a migrationTarget) error {
				return migrations.Down(a.DB())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPostgres(func(a migrationTarget) error {
				status, err := migrations.CurrentStatus(a.DB())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t pending=%t\n", status.Version, status.Dirty, status.Pending)
				return nil
			})
		},
	})

	return cmd
}

type migrationTarget interface {
	DB() *sql.DB
}

func withPostgres(fn func(migrationTarget) error) error {
	cfg, err := corecfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Type != corecfg.DatabasePostgres {
		return fmt.Errorf("migrations apply to postgres only (database.type=%s)", cfg.Database.Type)
	}

	adapter, err := openPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer adapter.Close()

	return fn(adapter)
}
