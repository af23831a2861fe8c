package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// duckdb driver.
	_ "github.com/marcboeker/go-duckdb"
)

func init() {
	Register("duckdb", func(log *slog.Logger) Adapter { return &DuckDBAdapter{base: newBase(log)} })
}

// DuckDBAdapter implements Adapter for DuckDB files.
type DuckDBAdapter struct {
	base
}

// Connect opens the DuckDB database at cfg.DSN (empty for in-memory).
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	db, err := sql.Open("duckdb", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open duckdb database: %w", err)
	}
	return a.adopt(ctx, db, "duckdb")
}

func (a *DuckDBAdapter) ListTables(ctx context.Context) ([]Table, error) {
	return a.listTablesQuery(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_type, table_name
	`)
}

func (a *DuckDBAdapter) DialectName() string { return "duckdb" }
