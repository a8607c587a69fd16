package main

import (
	"fmt"
	"log"
	"os"

	"mcq-catalog/internal/config"
	"mcq-catalog/internal/database"
	"mcq-catalog/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Error("Migration failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	var createDB bool

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the catalog schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := logger.Initialize(loaded.Logger); err != nil {
				log.Printf("Failed to initialize logger: %v", err)
			}
			if createDB {
				loaded.DB.CreateDatabase = true
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&createDB, "create-db", false, "Create the MySQL database before applying migrations (db.create_database)")

	root.AddCommand(
		newDirectionCmd("up", "Apply all pending migrations", database.Up, &cfg),
		newDirectionCmd("down", "Roll back all migrations", database.Down, &cfg),
	)
	return root
}

func newDirectionCmd(use, short string, direction database.Direction, cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.RunMigrations((*cfg).DB, direction)
		},
	}
}
