package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mcq-catalog/database"
	"mcq-catalog/internal/config"
	"mcq-catalog/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Direction selects which way RunMigrations moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// NewMigrateDB opens a dedicated connection for migrations. migrate closes it
// together with the migrate instance.
func NewMigrateDB(dbCfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open(dbCfg.Driver, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded migrations for dbCfg.Driver.
func RunMigrations(dbCfg config.DBConfig, direction Direction) error {
	dir, err := database.MigrationsPath(dbCfg.Driver)
	if err != nil {
		return err
	}

	src, err := iofs.New(database.Migrations, dir)
	if err != nil {
		return fmt.Errorf("could not open migrations source: %w", err)
	}

	if direction == Up && dbCfg.CreateDatabase {
		if err := EnsureDatabase(context.Background(), dbCfg); err != nil {
			return err
		}
	}

	db, err := NewMigrateDB(dbCfg)
	if err != nil {
		return err
	}

	var driver migratedb.Driver
	switch dbCfg.Driver {
	case config.DriverMySQL:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case config.DriverSQLite:
		driver, err = migratesqlite3.WithInstance(db, &migratesqlite3.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("could not create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbCfg.Driver, driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", verr)
	}
	logger.Get().Info("Migrations completed",
		zap.String("driver", dbCfg.Driver),
		zap.String("direction", string(direction)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
