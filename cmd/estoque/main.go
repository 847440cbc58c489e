package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estoque/internal/cli"
	"estoque/internal/config"
	"estoque/internal/log"
)

// globalFlags override the matching environment variables.
type globalFlags struct {
	port    string
	backend string
	dbPath  string
}

func (f *globalFlags) override(cfg *config.Config) {
	if f.port != "" {
		cfg.Port = f.port
	}
	if f.backend != "" {
		cfg.DataBackend = f.backend
	}
	if f.dbPath != "" {
		cfg.SQLiteDBPath = f.dbPath
	}
}

func (f *globalFlags) load(extra ...func(*config.Config)) (*config.Config, *log.Logger, error) {
	return cli.LoadConfig(append([]func(*config.Config){f.override}, extra...)...)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:          "estoque",
		Short:        "Inventory statistics dashboard",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(flags)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.port, "port", "p", "", "HTTP port (overrides PORT)")
	cmd.PersistentFlags().StringVarP(&flags.backend, "backend", "b", "", "data backend: remote, sqlite or memory (overrides DATA_BACKEND)")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newMigrateCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))
	return cmd
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
