// Package testdb provides database helpers for tests. It opens throwaway
// in-memory SQLite databases and applies the embedded schema migrations, so
// store tests exercise real SQL without an external server.
package testdb

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// goose configuration is process-global, so migration runs are serialized.
var migrateMu sync.Mutex

// New opens an in-memory SQLite database with all migrations applied.
// The database is closed automatically when the test finishes.
func New(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// A second pooled connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))

	return db
}

// Migrate applies the embedded SQLite migrations to db.
func Migrate(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(sqlite.Migrations())
	goose.SetTableName("schema_migrations")
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(db, ".")
}
