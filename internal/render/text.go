package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/leapstack-labs/sqlsheet/internal/result"
)

// TextRenderer writes fixed-width, pipe-delimited tables. Each page gets
// its own divider/header framing with widths computed from that page only.
type TextRenderer struct {
	w        io.Writer
	headings bool
	widths   []int
}

// NewText returns a text renderer writing to w.
func NewText(w io.Writer, headings bool) *TextRenderer {
	return &TextRenderer{w: w, headings: headings}
}

func (r *TextRenderer) BeginDocument() error { return nil }
func (r *TextRenderer) EndDocument() error   { return nil }

func (r *TextRenderer) BeginResultSet(cols []result.Column, widths []int, _ int) error {
	r.widths = widths
	if !r.headings {
		return nil
	}
	if err := r.divider(widths); err != nil {
		return err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	if err := r.row(names, widths); err != nil {
		return err
	}
	return r.divider(widths)
}

func (r *TextRenderer) EmitRow(values []string) error {
	return r.row(values, r.widths)
}

// EndResultSet writes the trailing divider. Unlike the header framing it is
// emitted even when headings are disabled.
func (r *TextRenderer) EndResultSet(widths []int) error {
	return r.divider(widths)
}

func (r *TextRenderer) row(values []string, widths []int) error {
	var b strings.Builder
	b.WriteString("|")
	for i, v := range values {
		b.WriteString(" ")
		b.WriteString(v)
		for w := runewidth.StringWidth(v); w < widths[i]; w++ {
			b.WriteString(" ")
		}
		b.WriteString(" |")
	}
	_, err := fmt.Fprintln(r.w, b.String())
	return err
}

// divider writes the dashed separator line: one dash plus width+3 dashes
// per column.
func (r *TextRenderer) divider(widths []int) error {
	n := 1
	for _, w := range widths {
		n += w + 3
	}
	_, err := fmt.Fprintln(r.w, strings.Repeat("-", n))
	return err
}
