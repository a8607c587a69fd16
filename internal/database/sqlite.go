package database

import (
	"database/sql"
	"strings"

	"mcq-catalog/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// sqliteCatalogDriver is go-sqlite3 with LOWER replaced by a Unicode-aware
// version, so catalog search folds non-ASCII letters the way MySQL's
// utf8mb4_unicode_ci collation does.
const sqliteCatalogDriver = "sqlite3_catalog"

func init() {
	sql.Register(sqliteCatalogDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteCatalogDriver, sqlx.QUESTION)
}

// driverName maps a configured engine to the database/sql driver that serves it.
func driverName(driver string) string {
	if driver == config.DriverSQLite {
		return sqliteCatalogDriver
	}
	return driver
}
