package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mcq-catalog/internal/config"
	"mcq-catalog/internal/logger"

	"go.uber.org/zap"
)

// EnsureDatabase creates the configured MySQL database with the catalog's
// character set when it does not exist yet. SQLite creates its file on open,
// so other drivers are a no-op.
func EnsureDatabase(ctx context.Context, dbCfg config.DBConfig) error {
	if dbCfg.Driver != config.DriverMySQL {
		return nil
	}
	db, err := sql.Open(config.DriverMySQL, dbCfg.ServerDSN())
	if err != nil {
		return fmt.Errorf("could not open database server: %w", err)
	}
	defer db.Close()
	return createDatabase(ctx, db, dbCfg.DBName)
}

func createDatabase(ctx context.Context, db *sql.DB, name string) error {
	stmt, err := createDatabaseStatement(name)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("could not create database %q: %w", name, err)
	}
	logger.Get().Info("Database is present", zap.String("database", name))
	return nil
}

func createDatabaseStatement(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "`\x00") {
		return "", fmt.Errorf("invalid database name %q", name)
	}
	return "CREATE DATABASE IF NOT EXISTS `" + name + "` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", nil
}
