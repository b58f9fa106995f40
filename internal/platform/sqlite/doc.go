// Package sqlite provides SQLite-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It targets the pure-Go modernc.org/sqlite driver, so single-node
// deployments and tests can run without a database server.
package sqlite
