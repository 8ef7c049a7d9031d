//go:build cgo_sqlite

package main

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// initDB opens the corpus database with mattn/go-sqlite3. Connection
// parameters already present in dataSource are left alone.
func initDB(dataSource string) (*sql.DB, error) {
	if !strings.Contains(dataSource, "?") {
		dataSource += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}
	return sql.Open(driverName, dataSource)
}
