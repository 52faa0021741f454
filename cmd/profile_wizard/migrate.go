package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/worker-profile-wizard/internal/db"
)

var (
	migrateConfigPath string
	migratePrint      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the profile database schema",
	Long: `Create the worker_profiles and worker_profile_revisions tables if they do not exist.
The statements are idempotent. Use --print to write the DDL to stdout instead.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateConfigPath, "config", "", "Path to config.json file")
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return err
	}

	cfg, err := loadConfig(migrateConfigPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database_url config is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
	return nil
}
