package main

// Manage the documents schema:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the documents table migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd("up", "Apply all pending migrations", db.RunMigrations),
		migrateCmd("down", "Roll back the most recent migration", db.RollbackMigration),
		migrateCmd("status", "Print the state of every migration", db.MigrationStatus),
		listCmd(),
	)
	// No subcommand keeps the old behaviour of applying everything.
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), db.RunMigrations)
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func migrateCmd(use, short string, run func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), run)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the embedded migration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := db.MigrationNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func withDatabase(ctx context.Context, run func(context.Context, *sql.DB) error) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errNoDatabase
	}
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()
	return run(ctx, sqlDB)
}
