package exec

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsheet/internal/adapter"
	"github.com/leapstack-labs/sqlsheet/internal/result"
	"github.com/leapstack-labs/sqlsheet/internal/testutil"
)

// fakeAdapter routes Query/Exec to a sqlmock handle.
type fakeAdapter struct {
	db    *sql.DB
	warns []string
}

func (f *fakeAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (f *fakeAdapter) Close() error                                  { return f.db.Close() }

func (f *fakeAdapter) Query(ctx context.Context, q string) (*sql.Rows, error) {
	return f.db.QueryContext(ctx, q)
}

func (f *fakeAdapter) Exec(ctx context.Context, q string) (sql.Result, error) {
	return f.db.ExecContext(ctx, q)
}

func (f *fakeAdapter) Warnings() []string {
	w := f.warns
	f.warns = nil
	return w
}

func (f *fakeAdapter) ListTables(context.Context) ([]adapter.Table, error) { return nil, nil }
func (f *fakeAdapter) DialectName() string                                 { return "mock" }

// recorder captures renderer calls as a flat event log.
type recorder struct {
	events []string
	rows   [][]string
}

func (r *recorder) BeginDocument() error { r.events = append(r.events, "begin-doc"); return nil }

func (r *recorder) BeginResultSet(cols []result.Column, widths []int, seq int) error {
	r.events = append(r.events, fmt.Sprintf("begin-set seq=%d cols=%d", seq, len(cols)))
	return nil
}

func (r *recorder) EmitRow(values []string) error {
	r.events = append(r.events, "row")
	r.rows = append(r.rows, values)
	return nil
}

func (r *recorder) EndResultSet([]int) error { r.events = append(r.events, "end-set"); return nil }
func (r *recorder) EndDocument() error       { r.events = append(r.events, "end-doc"); return nil }

func newTestExecutor(t *testing.T, opts Options) (*Executor, sqlmock.Sqlmock, *recorder, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	rec := &recorder{}
	out := &bytes.Buffer{}
	return New(&fakeAdapter{db: db}, rec, out, opts), mock, rec, out
}

func TestQueryRendersRows(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow("1", "alpha").
			AddRow("2", "beta"))

	require.NoError(t, e.Execute(context.Background(), "SELECT * FROM t"))

	assert.Equal(t, []string{
		"begin-doc",
		"begin-set seq=1 cols=2",
		"row", "row",
		"end-set",
		"end-doc",
	}, rec.events)
	assert.Equal(t, [][]string{{"1", "alpha"}, {"2", "beta"}}, rec.rows)
}

func TestQueryNullBecomesMarker(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	mock.ExpectQuery("(?i)SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"v"}).AddRow(nil))

	require.NoError(t, e.Execute(context.Background(), "select v from t"))
	require.Len(t, rec.rows, 1)
	assert.Equal(t, result.NullMarker, rec.rows[0][0])
}

func TestQueryEmptyResultStillFramed(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a", "b"}))

	require.NoError(t, e.Execute(context.Background(), "SELECT a, b FROM empty"))
	assert.Equal(t, []string{
		"begin-doc",
		"begin-set seq=1 cols=2",
		"end-set",
		"end-doc",
	}, rec.events)
}

func TestQueryPaginatesLargeResults(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	rows := sqlmock.NewRows([]string{"n"})
	for i := 0; i < result.PageSize+2; i++ {
		rows.AddRow("v")
	}
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	require.NoError(t, e.Execute(context.Background(), "SELECT n FROM big"))

	var begins, ends, emitted int
	for _, ev := range rec.events {
		switch ev {
		case "begin-set seq=1 cols=1":
			begins++
		case "end-set":
			ends++
		case "row":
			emitted++
		}
	}
	// Two pages, each with its own framing, and no empty trailing page.
	assert.Equal(t, 2, begins)
	assert.Equal(t, 2, ends)
	assert.Equal(t, result.PageSize+2, emitted)
}

func TestColumnTypeTags(t *testing.T) {
	e, mock, _, _ := newTestExecutor(t, Options{})

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("id").OfType("INTEGER", 0),
		sqlmock.NewColumn("price").OfType("DECIMAL", 0.0),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
	}
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(cols...).AddRow(1, 2.5, "x"))

	var seen []result.Column
	e.renderer = &captureCols{seen: &seen}

	require.NoError(t, e.Execute(context.Background(), "SELECT id, price, name FROM t"))
	require.Len(t, seen, 3)
	assert.Equal(t, result.TagInteger, seen[0].Tag)
	assert.Equal(t, result.TagFractional, seen[1].Tag)
	assert.Equal(t, result.TagOther, seen[2].Tag)
}

type captureCols struct {
	recorder
	seen *[]result.Column
}

func (c *captureCols) BeginResultSet(cols []result.Column, widths []int, seq int) error {
	*c.seen = append(*c.seen, cols...)
	return nil
}

func TestExecReportsUpdateCount(t *testing.T) {
	e, mock, rec, out := newTestExecutor(t, Options{})

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, e.Execute(context.Background(), "DELETE FROM t WHERE id > 5"))
	assert.Equal(t, "\nUpdated: 3\n\n", out.String())
	assert.Equal(t, []string{"begin-doc", "end-doc"}, rec.events,
		"non-queries emit no result set but still open and close the document")
}

func TestExecResultsOnlySuppressesCount(t *testing.T) {
	e, mock, _, out := newTestExecutor(t, Options{ResultsOnly: true})

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 7))

	require.NoError(t, e.Execute(context.Background(), "UPDATE t SET x = 1"))
	assert.Empty(t, out.String())
}

func TestSequenceResetsPerStatement(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("1"))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("2"))

	require.NoError(t, e.Execute(context.Background(), "SELECT 1"))
	require.NoError(t, e.Execute(context.Background(), "SELECT 2"))

	assert.Contains(t, rec.events, "begin-set seq=1 cols=1")
	assert.NotContains(t, rec.events, "begin-set seq=2 cols=1")
}

func TestSequenceAdvancesInIncrementTabMode(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{IncrementTab: true})

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("1"))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow("2"))

	require.NoError(t, e.Execute(context.Background(), "SELECT 1"))
	require.NoError(t, e.Execute(context.Background(), "SELECT 2"))

	assert.Contains(t, rec.events, "begin-set seq=1 cols=1")
	assert.Contains(t, rec.events, "begin-set seq=2 cols=1")
}

func TestQueryErrorSkipsRenderer(t *testing.T) {
	e, mock, rec, _ := newTestExecutor(t, Options{})

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("no such table: t"))

	err := e.Execute(context.Background(), "SELECT * FROM t")
	require.Error(t, err)
	assert.Empty(t, rec.events)
}

func TestIsQuery(t *testing.T) {
	queries := []string{
		"SELECT 1",
		"select * from t",
		"  WITH cte AS (SELECT 1) SELECT * FROM cte",
		"show tables",
		"EXPLAIN SELECT 1",
		"pragma table_info(t)",
		"VALUES (1), (2)",
		"FROM t SELECT *",
	}
	for _, q := range queries {
		assert.True(t, isQuery(q), "should classify as query: %q", q)
	}

	statements := []string{
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET x = 1",
		"delete from t",
		"CREATE TABLE t (id INT)",
		"DROP TABLE t",
		"",
	}
	for _, q := range statements {
		assert.False(t, isQuery(q), "should classify as non-query: %q", q)
	}
}
