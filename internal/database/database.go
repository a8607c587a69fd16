package database

import (
	"fmt"

	"mcq-catalog/internal/config"
	"mcq-catalog/internal/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewSQLXDB opens and pings the configured catalog database.
func NewSQLXDB(dbCfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driverName(dbCfg.Driver), dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dbCfg.Driver, err)
	}

	if dbCfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	logger.Get().Info("Successfully connected to database", zap.String("driver", dbCfg.Driver))
	return db, nil
}
