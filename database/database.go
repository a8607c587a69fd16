// Package database holds the versioned catalog schema for every supported engine.
package database

import (
	"embed"
	"fmt"
)

//go:embed migrations/mysql/*.sql migrations/sqlite3/*.sql
var Migrations embed.FS

// MigrationsPath returns the directory inside Migrations for driver.
func MigrationsPath(driver string) (string, error) {
	switch driver {
	case "mysql", "sqlite3":
		return "migrations/" + driver, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
