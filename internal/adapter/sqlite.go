package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// sqlite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", func(log *slog.Logger) Adapter { return &SQLiteAdapter{base: newBase(log)} })
}

// SQLiteAdapter implements Adapter for SQLite files via the pure-Go driver.
type SQLiteAdapter struct {
	base
}

// Connect opens the SQLite database at cfg.DSN (":memory:" for in-memory).
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	return a.adopt(ctx, db, "sqlite")
}

func (a *SQLiteAdapter) ListTables(ctx context.Context) ([]Table, error) {
	return a.listTablesQuery(ctx, `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name
	`)
}

func (a *SQLiteAdapter) DialectName() string { return "sqlite" }
