// Package exec runs SQL statements through an adapter and streams every
// result set, one bounded page at a time, into a renderer.
package exec

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqlsheet/internal/adapter"
	"github.com/leapstack-labs/sqlsheet/internal/render"
	"github.com/leapstack-labs/sqlsheet/internal/result"
)

// Options configures an Executor.
type Options struct {
	// ResultsOnly suppresses the "Updated: N" report for non-queries.
	ResultsOnly bool

	// IncrementTab keeps the result-set sequence number advancing across
	// statements instead of resetting per statement.
	IncrementTab bool

	Logger *slog.Logger
}

// Executor executes statements against one adapter and renders the output.
// It is single-threaded: one statement is fully rendered before the next.
type Executor struct {
	log      *slog.Logger
	db       adapter.Adapter
	renderer render.Renderer
	out      io.Writer
	opts     Options

	seq int
}

// New returns an executor writing non-result messages to out.
func New(db adapter.Adapter, r render.Renderer, out io.Writer, opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Executor{log: log, db: db, renderer: r, out: out, opts: opts}
}

// Execute runs one statement to completion. Errors are returned to the
// caller, which logs them and keeps the session alive; the renderer is not
// touched when execution itself fails.
func (e *Executor) Execute(ctx context.Context, sqlText string) error {
	log := e.log.With("statement_id", uuid.NewString())
	if !e.opts.IncrementTab {
		e.seq = 0
	}

	if isQuery(sqlText) {
		return e.runQuery(ctx, log, sqlText)
	}
	return e.runExec(ctx, log, sqlText)
}

func (e *Executor) runQuery(ctx context.Context, log *slog.Logger, sqlText string) error {
	rows, err := e.db.Query(ctx, sqlText)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	if err := e.renderer.BeginDocument(); err != nil {
		return err
	}

	for {
		cols, err := columnsOf(rows)
		if err != nil {
			return err
		}
		e.seq++
		log.Debug("rendering result set", "seq", e.seq, "columns", len(cols))

		if err := e.renderPages(rows, cols); err != nil {
			return err
		}
		e.logWarnings(log)

		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return e.renderer.EndDocument()
}

func (e *Executor) runExec(ctx context.Context, log *slog.Logger, sqlText string) error {
	res, err := e.db.Exec(ctx, sqlText)
	if err != nil {
		return err
	}
	e.logWarnings(log)

	// The document is opened and closed even without a result set so that
	// per-statement outputs (the workbook file in particular) stay current.
	if err := e.renderer.BeginDocument(); err != nil {
		return err
	}
	if !e.opts.ResultsOnly {
		count, err := res.RowsAffected()
		if err != nil {
			count = 0
		}
		if _, err := fmt.Fprintf(e.out, "\nUpdated: %d\n\n", count); err != nil {
			return err
		}
	}
	return e.renderer.EndDocument()
}

// renderPages streams the result set through the renderer in pages of at
// most result.PageSize rows. Each page recomputes widths and re-emits the
// renderer's framing; an empty result set still produces one framed page.
func (e *Executor) renderPages(rows *sql.Rows, cols []result.Column) error {
	m := result.NewMatrix(cols)
	first := true
	done := false
	for !done {
		m.Reset()
		for m.Len() < result.PageSize {
			if !rows.Next() {
				done = true
				break
			}
			row, err := scanRow(rows, len(cols))
			if err != nil {
				return err
			}
			if err := m.Append(row); err != nil {
				return err
			}
		}
		if m.Len() == 0 && !first {
			break
		}

		widths := m.Widths()
		if err := e.renderer.BeginResultSet(cols, widths, e.seq); err != nil {
			return err
		}
		for _, row := range m.Rows() {
			if err := e.renderer.EmitRow(row); err != nil {
				return err
			}
		}
		if err := e.renderer.EndResultSet(widths); err != nil {
			return err
		}
		first = false
	}
	return rows.Err()
}

func (e *Executor) logWarnings(log *slog.Logger) {
	for _, w := range e.db.Warnings() {
		log.Warn("driver warning", "message", w)
	}
}

// columnsOf builds column descriptors with type tags from driver metadata.
func columnsOf(rows *sql.Rows) ([]result.Column, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column metadata: %w", err)
	}
	cols := make([]result.Column, len(types))
	for i, t := range types {
		cols[i] = result.Column{
			Name: t.Name(),
			Tag:  result.TagForDriverType(t.DatabaseTypeName()),
		}
	}
	return cols, nil
}

// scanRow reads the current row as strings, mapping SQL NULL to the
// reserved marker.
func scanRow(rows *sql.Rows, n int) ([]string, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make([]string, n)
	for i, v := range values {
		switch v := v.(type) {
		case nil:
			row[i] = result.NullMarker
		case []byte:
			row[i] = string(v)
		default:
			row[i] = fmt.Sprintf("%v", v)
		}
	}
	return row, nil
}

// isQuery classifies a statement by its leading keyword. database/sql has
// no execute-either API, so anything that can return rows goes through
// Query and the rest through Exec.
func isQuery(sqlText string) bool {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "select", "with", "show", "describe", "desc", "explain", "pragma", "values", "table", "from":
		return true
	}
	return false
}
