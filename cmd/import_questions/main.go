package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mcq-catalog/internal/adapter"
	"mcq-catalog/internal/cache"
	"mcq-catalog/internal/config"
	"mcq-catalog/internal/database"
	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/logger"
	"mcq-catalog/internal/repository"
	"mcq-catalog/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Get().Error("Import failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	db      *sqlx.DB
	cleanup []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var root string
	var noMigrate bool

	cmd := &cobra.Command{
		Use:           "import_questions",
		Short:         "Import question-set JSON files into the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			if root == "" {
				root = a.cfg.Importer.RootDir
			}
			if a.cfg.Importer.Migrate && !noMigrate {
				if err := database.RunMigrations(a.cfg.DB, database.Up); err != nil {
					return err
				}
			}

			importer := a.importService()
			result, err := importer.ImportDirectory(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d of %d files imported (%d skipped), %d questions\n",
				result.FilesImported, result.FilesSeen, result.FilesSkipped, result.Questions)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "Directory to scan for question-set files (default importer.root_dir)")
	cmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "Skip applying schema migrations before the import")

	cmd.AddCommand(newPurgeCmd(a))
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	var division string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete a division and everything imported under it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			deleted, err := a.importService().PurgeDivision(cmd.Context(), division)
			if err != nil {
				return err
			}
			if deleted == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No division named %q\n", division)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged division %q\n", division)
			return nil
		},
	}
	cmd.Flags().StringVar(&division, "division", "", "Division name to delete (required)")
	_ = cmd.MarkFlagRequired("division")
	return cmd
}

func (a *app) open() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
	}
	a.cfg = cfg

	db, err := database.NewSQLXDB(cfg.DB)
	if err != nil {
		return err
	}
	a.db = db
	a.cleanup = append(a.cleanup, func() { _ = db.Close() })
	return nil
}

func (a *app) importService() service.ImportService {
	appLogger := logger.Get()

	var readCache domain.Cache
	if a.cfg.Importer.FlushCache && a.cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(a.cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, API cache will not be flushed", zap.Error(err))
		} else {
			a.cleanup = append(a.cleanup, func() { _ = redisClient.Close() })
			readCache = adapter.NewRedisCacheAdapter(redisClient)
		}
	}

	return service.NewImportService(
		repository.NewImportDatabaseAdapter(a.db),
		repository.NewTransactionManagerAdapter(a.db),
		readCache,
		service.NewPathLayout(a.cfg.Importer),
		os.Stdout,
		appLogger,
	)
}
