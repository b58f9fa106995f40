package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// connParams configures every connection the pool opens. WAL keeps readers
// from blocking the writer, busy_timeout retries locked writes instead of
// failing immediately, and foreign_keys enforces the projects-to-users
// reference. _time_format makes the driver store time.Time values in
// SQLite's text timestamp format rather than Go's String output.
const connParams = "_time_format=sqlite" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=foreign_keys(1)"

// Open opens the SQLite database at path with the connection parameters the
// stores rely on. The parameters ride on the DSN so they apply to every
// pooled connection, not just the first one opened.
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite", path+sep+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}
