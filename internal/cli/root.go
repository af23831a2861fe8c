// Package cli provides the command-line interface for sqlsheet.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsheet/internal/adapter"
	"github.com/leapstack-labs/sqlsheet/internal/cli/config"
	"github.com/leapstack-labs/sqlsheet/internal/exec"
	"github.com/leapstack-labs/sqlsheet/internal/render"
	"github.com/leapstack-labs/sqlsheet/internal/workbook"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Exit codes reported by the binary.
const (
	ExitUsage   = 1 // bad flags or configuration
	ExitConnect = 2 // could not connect to the database
	ExitRuntime = 3 // session failed after connecting
	ExitClose   = 4 // could not close the connection cleanly
)

// ExitError carries the process exit code alongside the cause.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func exitErr(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlsheet [flags] [dsn]",
		Short: "sqlsheet - interactive SQL with spreadsheet output",
		Long: `sqlsheet is an interactive SQL client that renders query results as
fixed-width text, CSV, HTML, or a multi-sheet spreadsheet workbook.

Statements are read one per line from the terminal or standard input.
Type quit or exit to leave the session.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return exitErr(ExitUsage, err)
			}
			if len(args) == 1 {
				cfg.Target.DSN = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return exitErr(ExitUsage, err)
			}
			return runSession(cmd, cfg)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sqlsheet.yaml)")
	flags.StringP("driver", "d", "", "database driver (sqlite, duckdb, postgres)")
	flags.StringP("user", "u", "", "database user")
	flags.StringP("password", "p", "", "database password")
	flags.StringP("format", "f", "text", "output format (text, csv, html, xls)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("title", "t", "", "report title, optionally with a {style} directive")
	flags.StringP("css-file", "s", "", "stylesheet for html output")
	flags.StringP("tabs", "T", "", "sheet names for xls output, e.g. \"[Q1][Q2|Second Quarter]\"")
	flags.StringP("sheet", "S", "", "pin all results to the named sheet")
	flags.Bool("headings", true, "print column headings and titles")
	flags.BoolP("append", "a", false, "append to an existing workbook")
	flags.BoolP("increment-tab", "i", false, "advance to the next sheet on every statement")
	flags.BoolP("results-only", "r", false, "print result rows only")
	flags.BoolP("quiet", "q", false, "suppress the prompt")
	flags.BoolP("verbose", "v", false, "verbose logging")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "csv", "html", "xls"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.List(), cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// runSession connects, builds the renderer chain, and runs the REPL until
// EOF or quit.
func runSession(cmd *cobra.Command, cfg *config.Config) error {
	log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	target := adapter.Config{
		Driver:   cfg.Target.Driver,
		DSN:      cfg.Target.DSN,
		Username: cfg.Target.User,
		Password: cfg.Target.Password,
	}
	db, err := adapter.New(target, log)
	if err != nil {
		return exitErr(ExitUsage, err)
	}
	if err := db.Connect(cmd.Context(), target); err != nil {
		return exitErr(ExitConnect, fmt.Errorf("unable to connect to database: %w", err))
	}

	renderer, out, cleanup, err := buildRenderer(cmd, cfg, log)
	if err != nil {
		_ = db.Close()
		return exitErr(ExitUsage, err)
	}
	defer cleanup()

	e := exec.New(db, renderer, out, exec.Options{
		ResultsOnly:  cfg.ResultsOnly,
		IncrementTab: cfg.IncrementTab,
		Logger:       log,
	})

	replErr := runREPL(cmd, e, db, cfg)

	if err := db.Close(); err != nil {
		if replErr == nil {
			return exitErr(ExitClose, fmt.Errorf("closing connection: %w", err))
		}
		log.Warn("closing connection", "error", err)
	}
	if replErr != nil {
		return exitErr(ExitRuntime, replErr)
	}
	return nil
}

// buildRenderer selects the renderer for the configured format. The
// returned writer receives non-result messages such as update counts; for
// workbook output that is still the terminal.
func buildRenderer(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (render.Renderer, io.Writer, func(), error) {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, nil, err
	}
	headings := cfg.Headings

	if format == render.FormatXLS {
		names, titles := config.ParseTabSpec(cfg.Tabs)
		session := workbook.NewSession(workbook.Config{
			Path:         cfg.Output,
			Append:       cfg.Append,
			IncrementTab: cfg.IncrementTab,
			Headings:     headings,
			Title:        cfg.Title,
			TabNames:     names,
			TabTitles:    titles,
			PinnedSheet:  cfg.Sheet,
		}, log)
		return session, cmd.OutOrStdout(), func() {}, nil
	}

	w := cmd.OutOrStdout()
	cleanup := func() {}
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not open output file %q: %w", cfg.Output, err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
	}

	switch format {
	case render.FormatCSV:
		return render.NewCSV(w, headings, cfg.Title), w, cleanup, nil
	case render.FormatHTML:
		return render.NewHTML(w, headings, cfg.Title, cfg.CSSFile, log), w, cleanup, nil
	default:
		return render.NewText(w, headings), w, cleanup, nil
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command and maps errors to exit codes.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code
		}
		return ExitUsage
	}
	return 0
}
