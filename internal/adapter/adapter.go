// Package adapter provides the database access seam: a small Adapter
// interface, a name-keyed registry, and implementations for SQLite, DuckDB
// and PostgreSQL. The rendering core never talks to a driver directly.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the connection parameters for an adapter.
type Config struct {
	// Driver selects the registered adapter (e.g. "sqlite", "postgres").
	Driver string

	// DSN is the driver-specific connection string or file path.
	DSN string

	// Username and Password override credentials in the DSN where the
	// driver supports separate fields.
	Username string
	Password string
}

// Table names one table or view, for REPL metadata listings.
type Table struct {
	Name string
	Type string
}

// Adapter is the interface every database backend implements.
type Adapter interface {
	// Connect establishes the connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sqlStr string) (*sql.Rows, error)

	// Exec executes a statement without a row result.
	Exec(ctx context.Context, sqlStr string) (sql.Result, error)

	// Warnings drains and returns server notices accumulated since the
	// last call. Backends without a notice channel return nil.
	Warnings() []string

	// ListTables returns the tables and views visible to the connection.
	ListTables(ctx context.Context) ([]Table, error)

	// DialectName returns the SQL dialect name (e.g. "sqlite").
	DialectName() string
}
