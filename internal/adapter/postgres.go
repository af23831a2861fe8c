package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
)

func init() {
	Register("postgres", func(log *slog.Logger) Adapter { return &PostgresAdapter{base: newBase(log)} })
}

// PostgresAdapter implements Adapter for PostgreSQL via pgx. Server notices
// raised while iterating a result set are collected and surfaced through
// Warnings rather than raised as errors.
type PostgresAdapter struct {
	base
	notices []string
}

// Connect parses the DSN and opens a database/sql handle over pgx.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.Username != "" {
		connCfg.User = cfg.Username
	}
	if cfg.Password != "" {
		connCfg.Password = cfg.Password
	}
	connCfg.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		a.notices = append(a.notices, fmt.Sprintf("%s: %s", n.Severity, n.Message))
	}

	return a.adopt(ctx, stdlib.OpenDB(*connCfg), "postgres")
}

// Warnings drains the notices collected since the last call.
func (a *PostgresAdapter) Warnings() []string {
	n := a.notices
	a.notices = nil
	return n
}

func (a *PostgresAdapter) ListTables(ctx context.Context) ([]Table, error) {
	return a.listTablesQuery(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_type, table_name
	`)
}

func (a *PostgresAdapter) DialectName() string { return "postgres" }
