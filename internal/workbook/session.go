// Package workbook implements the spreadsheet renderer: a per-run session
// owning the in-memory workbook, sheet (tab) lifecycle, append-mode file
// recovery, and directive-styled cells.
package workbook

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/sqlsheet/internal/result"
	"github.com/leapstack-labs/sqlsheet/internal/style"
)

// Config describes the workbook output target and tab behavior.
type Config struct {
	// Path is the workbook file. It is rewritten after every statement.
	Path string

	// Append loads an existing workbook instead of starting fresh.
	Append bool

	// IncrementTab keeps the result-set sequence advancing across
	// statements, so each statement lands on its own configured tab.
	IncrementTab bool

	// Headings enables the per-tab header row.
	Headings bool

	// Title is the default tab title, usually carrying a style directive.
	Title string

	// TabNames and TabTitles are the configured tabs, positionally
	// aligned. TabTitles is either empty or the same length as TabNames.
	TabNames  []string
	TabTitles []string

	// PinnedSheet routes every result set to the named configured tab.
	PinnedSheet string
}

// Session is the workbook renderer. It lives for the whole program run and
// persists the workbook to Config.Path at the end of every statement.
//
// A Session is not safe for concurrent use.
type Session struct {
	log *slog.Logger
	cfg Config

	file   *excelize.File
	styles *StyleCache

	// Effective values; append-mode recovery can force these off when an
	// existing file (which already carries titles and headers) is loaded.
	headings bool
	title    string

	// freshFallback is set when an append load failed this statement and
	// the session fell back to creating a new file.
	freshFallback bool

	// virgin marks a freshly created workbook whose mandatory default
	// sheet has not been claimed yet.
	virgin bool

	cursor map[string]int // rows written per sheet
	sheet  string         // target sheet of the current result set
	cols   []result.Column
}

// NewSession creates a workbook session. Nothing touches the filesystem
// until the first statement begins.
func NewSession(cfg Config, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{
		log:      log,
		cfg:      cfg,
		headings: cfg.Headings,
		title:    cfg.Title,
	}
}

// Headings reports whether header rows are currently emitted. Append-mode
// recovery flips this off for the rest of the run.
func (s *Session) Headings() bool { return s.headings }

// BeginDocument prepares the workbook for one statement.
//
// Without append mode every statement starts a fresh workbook that
// overwrites the target file. With append mode the first statement tries to
// load the existing file: on success titles and headers are suppressed for
// the rest of the run; on failure a fresh workbook is created and append is
// retried on the next statement.
func (s *Session) BeginDocument() error {
	s.freshFallback = false

	if !s.cfg.Append {
		s.start(excelize.NewFile(), true)
		return nil
	}
	if s.file != nil {
		// Append continues against the in-memory workbook.
		return nil
	}

	f, err := excelize.OpenFile(s.cfg.Path)
	if err != nil {
		s.log.Debug("append target not loadable, creating new workbook",
			"path", s.cfg.Path, "error", err)
		s.freshFallback = true
		s.start(excelize.NewFile(), true)
		return nil
	}

	s.log.Debug("loaded existing workbook for append", "path", s.cfg.Path)
	s.headings = false
	s.title = ""
	s.start(f, false)
	return nil
}

// WriteError reports a failure to persist the workbook file. Unlike
// statement errors it is fatal: losing the output file is not recoverable
// by running another statement.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write workbook %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// EndDocument serializes the workbook to the target file, overwriting it.
func (s *Session) EndDocument() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.SaveAs(s.cfg.Path); err != nil {
		return &WriteError{Path: s.cfg.Path, Err: err}
	}
	return nil
}

// BeginResultSet resolves the target sheet for the result set and writes
// the title and header rows when the tab lifecycle calls for them. It is
// invoked once per page; pages after the first of a configured tab resolve
// to the existing sheet and append.
func (s *Session) BeginResultSet(cols []result.Column, _ []int, seq int) error {
	s.cols = cols

	idx := -1
	if s.cfg.PinnedSheet != "" {
		idx = slices.Index(s.cfg.TabNames, s.cfg.PinnedSheet)
	}
	if idx < 0 {
		idx = seq - 1
	}

	title := s.title
	if idx >= 0 && idx < len(s.cfg.TabTitles) {
		title = s.cfg.TabTitles[idx]
	}

	newSheet := true
	if idx >= 0 && idx < len(s.cfg.TabNames) {
		if err := s.fillIntermediate(idx); err != nil {
			return err
		}
		name := s.cfg.TabNames[idx]
		if s.sheetExists(name) {
			newSheet = false
		} else if err := s.createSheet(name); err != nil {
			return err
		}
		s.sheet = name
	} else {
		name := s.autoSheetName()
		if err := s.createSheet(name); err != nil {
			return err
		}
		s.sheet = name
	}

	appendActive := s.cfg.Append && !s.freshFallback
	if (!appendActive || s.cfg.IncrementTab) && newSheet {
		if title != "" {
			if err := s.writeTitle(s.sheet, title); err != nil {
				return err
			}
		}
		if s.headings {
			if err := s.writeHeader(s.sheet, cols); err != nil {
				return err
			}
		}
	}
	return nil
}

// fillIntermediate creates the configured sheets between the highest sheet
// created so far and idx (exclusive), so sheet order matches configuration
// even when earlier result sets were skipped.
func (s *Session) fillIntermediate(idx int) error {
	for i := s.sheetCount(); i < idx; i++ {
		name := s.cfg.TabNames[i]
		if s.sheetExists(name) {
			continue
		}
		s.log.Debug("creating intermediate sheet", "name", name)
		if err := s.createSheet(name); err != nil {
			return err
		}
		if i < len(s.cfg.TabTitles) && s.cfg.TabTitles[i] != "" {
			if err := s.writeTitle(name, s.cfg.TabTitles[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// EmitRow appends one data row to the resolved sheet. Null-marker cells are
// skipped entirely, numeric tags produce typed cells with the integer or
// decimal format, and values opening with '{' go through the directive
// parser.
func (s *Session) EmitRow(values []string) error {
	row := s.cursor[s.sheet] + 1
	for i, v := range values {
		if v == result.NullMarker {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		switch {
		case i < len(s.cols) && s.cols[i].Tag.Numeric():
			if err := s.setNumericCell(cell, v, s.cols[i].Tag); err != nil {
				return fmt.Errorf("column %q: %w", s.cols[i].Name, err)
			}
		case strings.HasPrefix(v, "{"):
			if err := s.setStyledCell(s.sheet, cell, v); err != nil {
				return err
			}
		default:
			if err := s.file.SetCellStr(s.sheet, cell, v); err != nil {
				return err
			}
		}
	}
	s.cursor[s.sheet] = row
	return nil
}

// EndResultSet sizes each column to the page's computed display width.
func (s *Session) EndResultSet(widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(s.sheet, col, col, float64(w)+2); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) setNumericCell(cell, v string, tag result.TypeTag) error {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse numeric value %q: %w", v, err)
	}
	if err := s.file.SetCellValue(s.sheet, cell, n); err != nil {
		return err
	}
	id, err := s.styles.Numeric(tag)
	if err != nil {
		return err
	}
	return s.file.SetCellStyle(s.sheet, cell, cell, id)
}

func (s *Session) setStyledCell(sheet, cell, raw string) error {
	d := style.Parse(raw)
	if !d.Terminated {
		s.log.Warn("style directive missing closing brace", "value", raw)
	}
	id, err := s.styles.Get(d)
	if err != nil {
		return err
	}
	if err := s.file.SetCellStr(sheet, cell, d.Text); err != nil {
		return err
	}
	if err := s.file.SetCellStyle(sheet, cell, cell, id); err != nil {
		return err
	}
	if d.Merged() {
		col, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(col+d.MergeSpan, row)
		if err != nil {
			return err
		}
		if err := s.file.MergeCell(sheet, cell, end); err != nil {
			return err
		}
	}
	return nil
}

// writeTitle writes the styled title into the sheet's next row, column A.
func (s *Session) writeTitle(sheet, raw string) error {
	row := s.cursor[sheet] + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := s.setStyledCell(sheet, cell, raw); err != nil {
		return err
	}
	s.cursor[sheet] = row
	return nil
}

// writeHeader writes the column names as a plain row.
func (s *Session) writeHeader(sheet string, cols []result.Column) error {
	row := s.cursor[sheet] + 1
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellStr(sheet, cell, c.Name); err != nil {
			return err
		}
	}
	s.cursor[sheet] = row
	return nil
}

// start adopts a workbook file as the session's current one. For loaded
// files the row cursors pick up after each sheet's existing content.
func (s *Session) start(f *excelize.File, virgin bool) {
	s.file = f
	s.virgin = virgin
	s.styles = NewStyleCache(f)
	s.cursor = make(map[string]int)
	if !virgin {
		for _, name := range f.GetSheetList() {
			rows, err := f.GetRows(name)
			if err != nil {
				s.log.Warn("could not read sheet while resuming", "sheet", name, "error", err)
				continue
			}
			s.cursor[name] = len(rows)
		}
	}
}

func (s *Session) sheetCount() int {
	if s.virgin {
		return 0
	}
	return len(s.file.GetSheetList())
}

func (s *Session) sheetExists(name string) bool {
	if s.virgin {
		return false
	}
	idx, err := s.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// createSheet adds a sheet, claiming the workbook's default sheet first so
// a fresh file ends up with exactly the sheets the session created.
func (s *Session) createSheet(name string) error {
	if s.virgin {
		def := s.file.GetSheetName(0)
		if def != name {
			if err := s.file.SetSheetName(def, name); err != nil {
				return fmt.Errorf("create sheet %q: %w", name, err)
			}
		}
		s.virgin = false
	} else {
		if _, err := s.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}
	s.cursor[name] = 0
	return nil
}

// autoSheetName picks the first unused SheetN name for result sets beyond
// the configured tab range.
func (s *Session) autoSheetName() string {
	for n := s.sheetCount() + 1; ; n++ {
		name := fmt.Sprintf("Sheet%d", n)
		if !s.sheetExists(name) {
			return name
		}
	}
}
