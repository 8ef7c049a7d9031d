//go:build !cgo_sqlite

package main

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// initDB opens the corpus database with the pure-Go modernc.org/sqlite driver.
// Connection parameters already present in dataSource are left alone.
func initDB(dataSource string) (*sql.DB, error) {
	if !strings.Contains(dataSource, "?") {
		dataSource += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	return sql.Open(driverName, dataSource)
}
