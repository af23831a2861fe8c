package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/sqlsheet/internal/result"
	"github.com/leapstack-labs/sqlsheet/internal/style"
)

// CSVRenderer writes comma-joined rows. Values are emitted verbatim: no
// quoting or delimiter escaping is performed, so a comma inside a value
// shifts columns. This is a compatibility contract with existing consumers,
// not an oversight, which is why encoding/csv is not used here.
type CSVRenderer struct {
	w        io.Writer
	headings bool
	title    string
}

// NewCSV returns a CSV renderer writing to w. A non-empty title is printed
// as the first line of the document when headings are enabled; any style
// directive on it is stripped to its literal text.
func NewCSV(w io.Writer, headings bool, title string) *CSVRenderer {
	return &CSVRenderer{w: w, headings: headings, title: title}
}

func (r *CSVRenderer) BeginDocument() error {
	if !r.headings || r.title == "" {
		return nil
	}
	_, err := fmt.Fprintln(r.w, style.Parse(r.title).Text)
	return err
}

func (r *CSVRenderer) BeginResultSet(cols []result.Column, _ []int, _ int) error {
	if !r.headings {
		return nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	_, err := fmt.Fprintln(r.w, strings.Join(names, ","))
	return err
}

func (r *CSVRenderer) EmitRow(values []string) error {
	_, err := fmt.Fprintln(r.w, strings.Join(values, ","))
	return err
}

func (r *CSVRenderer) EndResultSet(_ []int) error { return nil }
func (r *CSVRenderer) EndDocument() error         { return nil }
