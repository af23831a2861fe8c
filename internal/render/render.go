// Package render defines the format-polymorphic renderer contract and the
// stream encoders for fixed-width text, CSV and HTML output.
package render

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlsheet/internal/result"
)

// Format identifies an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	// FormatXLS is the spreadsheet workbook output. The name is kept for
	// command-line compatibility; files are written in XLSX.
	FormatXLS Format = "xls"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "html":
		return FormatHTML, nil
	case "xls", "xlsx":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want text, csv, html or xls)", s)
}

// Renderer encodes result sets into one output document. One statement maps
// to one document; a result set larger than a page is re-framed with
// repeated BeginResultSet/EndResultSet calls, one per page.
//
// Implementations are not safe for concurrent use.
type Renderer interface {
	// BeginDocument starts the per-statement document framing.
	BeginDocument() error

	// BeginResultSet starts one page of a result set. seq is the 1-based
	// result-set sequence number and stays constant across the pages of
	// one result set.
	BeginResultSet(cols []result.Column, widths []int, seq int) error

	// EmitRow writes one data row. Values align positionally with the
	// columns given to BeginResultSet.
	EmitRow(values []string) error

	// EndResultSet closes the current page.
	EndResultSet(widths []int) error

	// EndDocument closes the per-statement framing.
	EndDocument() error
}
