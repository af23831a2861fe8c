package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// runCommand runs the root command against an in-memory SQLite database
// with the given script on stdin.
func runCommand(t *testing.T, args []string, script string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(script))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTextSession(t *testing.T) {
	script := `
create table people (id integer, name text);
insert into people values (1, 'alpha');
select id, name from people order by id;
quit
`
	stdout, _, err := runCommand(t, []string{"--driver", "sqlite", "--quiet"}, script)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Updated: 1")
	assert.Contains(t, stdout, "id")
	assert.Contains(t, stdout, "alpha")
}

func TestStatementErrorKeepsSessionAlive(t *testing.T) {
	script := `
select * from no_such_table;
select 'still here' as note;
`
	stdout, stderr, err := runCommand(t, []string{"--driver", "sqlite"}, script)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stdout, "still here")
}

func TestResultsOnlySuppressesFraming(t *testing.T) {
	script := `
create table t (id integer);
insert into t values (42);
select id from t;
`
	stdout, _, err := runCommand(t, []string{"--driver", "sqlite", "--results-only"}, script)
	require.NoError(t, err)

	assert.NotContains(t, stdout, "Updated:")
	assert.Contains(t, stdout, "42")
}

func TestResultsOnlyKeepsHeadings(t *testing.T) {
	stdout, _, err := runCommand(t, []string{"--driver", "sqlite", "--results-only"},
		"select 42 as answer;\n")
	require.NoError(t, err)

	// --results-only drops the update-count report only; the framed
	// header row still prints when headings are on.
	assert.Contains(t, stdout, "answer")
	assert.Contains(t, stdout, "42")
}

func TestCSVOutputToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	script := "select 'a' as x, 'b' as y;\n"
	_, _, err := runCommand(t, []string{
		"--driver", "sqlite",
		"--format", "csv",
		"--output", path,
		"--title", "Report",
	}, script)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Report\n")
	assert.Contains(t, content, "x,y\n")
	assert.Contains(t, content, "a,b\n")
}

func TestWorkbookSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	script := `
create table t (id integer, name text);
insert into t values (7, 'seven');
select id, name from t;
`
	_, _, err := runCommand(t, []string{
		"--driver", "sqlite",
		"--format", "xls",
		"--output", path,
	}, script)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)

	flat := ""
	for _, row := range rows {
		flat += strings.Join(row, "|") + "\n"
	}
	assert.Contains(t, flat, "seven")
	assert.Contains(t, flat, "name")
}

func TestUnknownFormatFailsUsage(t *testing.T) {
	_, _, err := runCommand(t, []string{"--driver", "sqlite", "--format", "pdf"}, "")
	require.Error(t, err)

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitUsage, exit.Code)
}

func TestUnknownDriverFailsUsage(t *testing.T) {
	_, _, err := runCommand(t, []string{"--driver", "oracle"}, "")
	require.Error(t, err)

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitUsage, exit.Code)
}

func TestXLSRequiresOutputFile(t *testing.T) {
	_, _, err := runCommand(t, []string{"--driver", "sqlite", "--format", "xls"}, "")
	require.Error(t, err)

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitUsage, exit.Code)
}

func TestWorkbookWriteFailureIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.xlsx")

	_, _, err := runCommand(t, []string{
		"--driver", "sqlite",
		"--format", "xls",
		"--output", path,
	}, "select 1 as n;\nselect 2 as n;\n")
	require.Error(t, err)

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitRuntime, exit.Code)
}

func TestDotSchema(t *testing.T) {
	script := `
create table orders (id integer, amount real);
.schema orders
`
	stdout, _, err := runCommand(t, []string{"--driver", "sqlite"}, script)
	require.NoError(t, err)

	assert.Contains(t, stdout, "id")
	assert.Contains(t, stdout, "amount")
}

func TestDotTables(t *testing.T) {
	script := `
create table customers (id integer);
.tables
`
	stdout, _, err := runCommand(t, []string{"--driver", "sqlite"}, script)
	require.NoError(t, err)

	assert.Contains(t, stdout, "customers")
}
