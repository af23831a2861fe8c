package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// base provides the database/sql plumbing shared by the concrete adapters.
type base struct {
	db  *sql.DB
	log *slog.Logger
}

func newBase(log *slog.Logger) base {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return base{log: log}
}

// adopt takes ownership of an open connection after a ping check.
func (b *base) adopt(ctx context.Context, db *sql.DB, driver string) error {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping %s: %w", driver, err)
	}
	b.db = db
	return nil
}

func (b *base) Close() error {
	if b.db != nil {
		b.log.Debug("closing database connection")
		return b.db.Close()
	}
	return nil
}

func (b *base) Query(ctx context.Context, sqlStr string) (*sql.Rows, error) {
	if b.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (b *base) Exec(ctx context.Context, sqlStr string) (sql.Result, error) {
	if b.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	res, err := b.db.ExecContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("execute failed: %w", err)
	}
	return res, nil
}

// Warnings is a no-op for backends without a notice channel.
func (b *base) Warnings() []string { return nil }

// listTablesQuery runs a two-column (name, type) metadata query.
func (b *base) listTablesQuery(ctx context.Context, query string) ([]Table, error) {
	if b.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, fmt.Errorf("scan table metadata: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table metadata: %w", err)
	}
	return tables, nil
}
