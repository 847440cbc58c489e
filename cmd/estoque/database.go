package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"estoque/internal/config"
	"estoque/internal/statistics"
	"estoque/internal/storage"
)

// forceSQLite makes validation prepare the database directory.
func forceSQLite(cfg *config.Config) {
	cfg.DataBackend = config.BackendSQLite
}

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQLite schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load(forceSQLite)
			if err != nil {
				return err
			}
			version, err := storage.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			logger.Info("Migrations applied", "db_path", cfg.SQLiteDBPath, "schema_version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load SEED_FILE (or demo data) into an empty SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load(forceSQLite)
			if err != nil {
				return err
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			data, err := statistics.LoadDatasetOrDemo(cfg.SeedFile, time.Now())
			if err != nil {
				return fmt.Errorf("load seed data: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			seeded, err := repo.Seed(ctx, data.Items, data.Transactions)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has items, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items and %d transactions\n", len(data.Items), len(data.Transactions))
			return nil
		},
	}
}
