// Package result holds the in-memory representation of one page of a SQL
// result set: column metadata with coarse type tags, stringified rows, and
// per-column display widths.
package result

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// NullMarker is the reserved literal standing in for SQL NULL. Text, CSV
// and HTML output print it verbatim; the workbook renderer leaves the cell
// blank.
const NullMarker = "<NULL>"

// PageSize is the maximum number of rows buffered per page. It bounds peak
// memory for width computation; renderers are re-framed at page boundaries.
const PageSize = 50000

// ErrPageFull is returned by Matrix.Append once PageSize rows are buffered.
// The caller must flush the page and Reset before appending more.
var ErrPageFull = errors.New("result page full")

// TypeTag classifies a column for spreadsheet cell typing.
type TypeTag int

const (
	// TagOther marks non-numeric columns; values are written as strings.
	TagOther TypeTag = iota
	// TagInteger marks whole-number columns.
	TagInteger
	// TagFractional marks decimal columns.
	TagFractional
)

// Numeric reports whether the tag is one of the numeric classes.
func (t TypeTag) Numeric() bool { return t == TagInteger || t == TagFractional }

// Column describes one result-set column.
type Column struct {
	Name string
	Tag  TypeTag
}

// TagForDriverType maps a database/sql driver type name to a TypeTag.
func TagForDriverType(dbType string) TypeTag {
	switch strings.ToUpper(dbType) {
	case "TINYINT", "SMALLINT", "INT", "INTEGER", "BIGINT", "INT2", "INT4", "INT8", "HUGEINT", "UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "SERIAL", "BIGSERIAL":
		return TagInteger
	case "DECIMAL", "NUMERIC", "DOUBLE", "DOUBLE PRECISION", "FLOAT", "FLOAT4", "FLOAT8", "REAL":
		return TagFractional
	default:
		return TagOther
	}
}

// Matrix buffers one page of rows for a result set. Every row has exactly
// one cell per column; widths are recomputed from the buffered page, never
// carried across pages.
type Matrix struct {
	cols []Column
	rows [][]string
}

// NewMatrix returns an empty matrix for the given columns.
func NewMatrix(cols []Column) *Matrix {
	return &Matrix{cols: cols}
}

// Columns returns the column descriptors.
func (m *Matrix) Columns() []Column { return m.cols }

// Len returns the number of buffered rows.
func (m *Matrix) Len() int { return len(m.rows) }

// Rows returns the buffered rows.
func (m *Matrix) Rows() [][]string { return m.rows }

// Append buffers one row. It returns ErrPageFull when the page cap is
// reached and an error when the cell count does not match the columns.
func (m *Matrix) Append(row []string) error {
	if len(m.rows) >= PageSize {
		return ErrPageFull
	}
	if len(row) != len(m.cols) {
		return fmt.Errorf("row has %d cells, want %d", len(row), len(m.cols))
	}
	m.rows = append(m.rows, row)
	return nil
}

// Reset drops the buffered rows, starting a new page.
func (m *Matrix) Reset() { m.rows = m.rows[:0] }

// Widths returns the per-column display width: the maximum of the header
// width and every buffered cell width on the current page.
func (m *Matrix) Widths() []int {
	widths := make([]int, len(m.cols))
	for i, c := range m.cols {
		widths[i] = runewidth.StringWidth(c.Name)
	}
	for _, row := range m.rows {
		for i, v := range row {
			if w := runewidth.StringWidth(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}
