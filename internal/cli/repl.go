package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlsheet/internal/adapter"
	"github.com/leapstack-labs/sqlsheet/internal/cli/config"
	"github.com/leapstack-labs/sqlsheet/internal/exec"
	"github.com/leapstack-labs/sqlsheet/internal/workbook"
)

// runREPL reads statements one per line until EOF or quit. Statement
// failures are reported and the session continues; only reader failures
// end the session with an error.
func runREPL(cmd *cobra.Command, e *exec.Executor, db adapter.Adapter, cfg *config.Config) error {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runInteractive(cmd, e, db, cfg)
	}
	return runScripted(cmd, e, db)
}

func runInteractive(cmd *cobra.Command, e *exec.Executor, db adapter.Adapter, cfg *config.Config) error {
	prompt := cfg.Target.Driver + "> "
	if cfg.Quiet {
		prompt = ""
	}

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".sqlsheet_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    newCompleter(cmd.Context(), db),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		quit, fatal := handleLine(cmd, e, db, line)
		if fatal != nil {
			return fatal
		}
		if quit {
			return nil
		}
	}
}

func runScripted(cmd *cobra.Command, e *exec.Executor, db adapter.Adapter) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		quit, fatal := handleLine(cmd, e, db, scanner.Text())
		if fatal != nil {
			return fatal
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// handleLine dispatches one input line. Statement errors are reported and
// swallowed; losing the workbook file is the one failure that ends the
// session, returned as fatal.
func handleLine(cmd *cobra.Command, e *exec.Executor, db adapter.Adapter, line string) (quit bool, fatal error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
		return true, nil
	}
	if strings.HasPrefix(line, ".") {
		handleDotCommand(cmd, db, line)
		return false, nil
	}

	stmt := strings.TrimSuffix(line, ";")
	if err := e.Execute(cmd.Context(), stmt); err != nil {
		var write *workbook.WriteError
		if errors.As(err, &write) {
			return false, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return false, nil
}

func handleDotCommand(cmd *cobra.Command, db adapter.Adapter, line string) {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".tables":
		if err := printTables(cmd.Context(), cmd.OutOrStdout(), db); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	case ".schema":
		if len(parts) < 2 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return
		}
		if err := printSchema(cmd.Context(), cmd.OutOrStdout(), db, parts[1]); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	case ".help":
		printREPLHelp(cmd.OutOrStdout())
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
	}
}

// printTables lists the target's tables and views as a terminal table.
// This is session metadata, so it always goes to the terminal rather than
// through the configured renderer.
func printTables(ctx context.Context, w io.Writer, db adapter.Adapter) error {
	tables, err := db.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Type"})
	for _, tb := range tables {
		t.AppendRow(table.Row{tb.Name, tb.Type})
	}
	t.Render()
	return nil
}

// printSchema shows column names and driver types for a table. The
// metadata comes from a zero-row probe query, so it works the same against
// every adapter.
func printSchema(ctx context.Context, w io.Writer, db adapter.Adapter, name string) error {
	rows, err := db.Query(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", name))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type"})
	for _, ct := range types {
		t.AppendRow(table.Row{ct.Name(), ct.DatabaseTypeName()})
	}
	t.Render()
	return rows.Err()
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables and views in the target database
  .schema <name>  Show columns and types for a table or view
  quit / exit     End the session

Each line is executed as one SQL statement. Query results go to the
configured output; everything else stays on the terminal.
`
	_, _ = fmt.Fprintln(w, help)
}

// newCompleter builds tab completion from the target's table names.
func newCompleter(ctx context.Context, db adapter.Adapter) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	if tables, err := db.ListTables(ctx); err == nil {
		for _, tb := range tables {
			items = append(items, readline.PcItem(tb.Name))
		}
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
