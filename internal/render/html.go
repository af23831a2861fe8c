package render

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/sqlsheet/internal/result"
	"github.com/leapstack-labs/sqlsheet/internal/style"
)

//go:embed default.css
var defaultCSS string

// HTMLRenderer writes a self-contained HTML document: one page head per
// statement, one table per result-set page.
type HTMLRenderer struct {
	w        io.Writer
	headings bool
	title    string
	cssFile  string
	log      *slog.Logger
}

// NewHTML returns an HTML renderer writing to w. cssFile overrides the
// bundled stylesheet; if it cannot be read the error is logged and the
// document is rendered without custom styling.
func NewHTML(w io.Writer, headings bool, title, cssFile string, log *slog.Logger) *HTMLRenderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &HTMLRenderer{w: w, headings: headings, title: title, cssFile: cssFile, log: log}
}

// BeginDocument emits the page head, stylesheet and optional title block.
// Nothing is emitted when headings are disabled; the closing tags from
// EndDocument still are.
func (r *HTMLRenderer) BeginDocument() error {
	if !r.headings {
		return nil
	}
	title := style.Parse(r.title).Text
	if _, err := fmt.Fprintf(r.w, "<html><head><title>%s</title><meta http-equiv=\"content-type\" content=\"text/html;charset=UTF-8\"/>\n", title); err != nil {
		return err
	}
	if err := r.writeCSS(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.w, "</head>"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.w, "<body>"); err != nil {
		return err
	}
	if r.title != "" {
		if _, err := fmt.Fprintf(r.w, "<table width=\"100%%\">\n<tr><th class=\"title\">%s</th>\n</table>\n", title); err != nil {
			return err
		}
	}
	return nil
}

func (r *HTMLRenderer) writeCSS() error {
	css := defaultCSS
	if r.cssFile != "" {
		data, err := os.ReadFile(r.cssFile)
		if err != nil {
			r.log.Error("could not read css file, using bundled stylesheet", "path", r.cssFile, "error", err)
		} else {
			css = string(data)
		}
	}
	_, err := fmt.Fprintf(r.w, "<style>\n%s</style>\n", css)
	return err
}

func (r *HTMLRenderer) BeginResultSet(cols []result.Column, _ []int, _ int) error {
	if _, err := fmt.Fprintln(r.w, "<table width=\"100%\">"); err != nil {
		return err
	}
	if !r.headings {
		return nil
	}
	if _, err := fmt.Fprint(r.w, "<tr>"); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := fmt.Fprintf(r.w, "<th align=\"center\">%s</th>", c.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.w, "</tr>")
	return err
}

func (r *HTMLRenderer) EmitRow(values []string) error {
	if _, err := fmt.Fprint(r.w, "<tr>"); err != nil {
		return err
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(r.w, "<td align=\"center\">%s</td>", v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.w, "</tr>")
	return err
}

func (r *HTMLRenderer) EndResultSet(_ []int) error {
	_, err := fmt.Fprintln(r.w, "</table>")
	return err
}

func (r *HTMLRenderer) EndDocument() error {
	if _, err := fmt.Fprintln(r.w, "</body>"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.w, "</html>")
	return err
}
