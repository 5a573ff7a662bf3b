package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/store"
)

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending database migrations to DATABASE_URL.

Examples:
  # Bring the schema up to date
  didyouthough migrate

  # Roll every migration back
  didyouthough migrate down

  # Show the applied version
  didyouthough migrate version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, logger, err := databaseURL()
		if err != nil {
			return err
		}
		if err := store.Migrate(url); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, logger, err := databaseURL()
		if err != nil {
			return err
		}
		if err := store.MigrateDown(url); err != nil {
			return err
		}
		logger.Info("migrations rolled back")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _, err := databaseURL()
		if err != nil {
			return err
		}
		v, dirty, err := store.MigrationVersion(url)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d", v)
		if dirty {
			fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func databaseURL() (string, *zap.Logger, error) {
	cfg, logger, err := setup()
	if err != nil {
		return "", nil, err
	}
	if cfg.DatabaseURL == "" {
		return "", nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg.DatabaseURL, logger, nil
}
