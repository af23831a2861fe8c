// Package style implements the inline {flags}text directive language used
// for titles, header cells, and styled spreadsheet cells.
//
// A directive is a leading brace-delimited flag block followed by literal
// text, e.g. "{BUC3>6}Quarterly Totals". Flags are single characters and
// may appear in any order:
//
//	u/U  underline
//	b/B  bold
//	i/I  italic
//	c/C  center
//	1-4  explicit heading level (default 5)
//	>    merge-span mode; the digit that follows sets the span (0 if none)
//
// Unrecognized characters are ignored. A string that does not start with
// '{' carries no directive and is returned as plain text.
package style

// DefaultHeading is the heading level used when no digit flag is given.
// Level 5 maps to a 10pt font, which is the normal body size.
const DefaultHeading = 5

// Directive is the parsed form of a {flags}text string.
type Directive struct {
	Bold      bool
	Italic    bool
	Underline bool
	Center    bool

	// Heading is the heading level, 1..5. Font size is 20 - 2*Heading.
	Heading int

	// MergeSpan is the number of additional columns to merge into the
	// cell, or -1 when no merge was requested. A '>' flag with no digit
	// requests a zero-span merge.
	MergeSpan int

	// Text is the literal text after the closing brace. When the input
	// ends before a closing brace is found, Text is empty.
	Text string

	// Terminated reports whether a closing brace was seen. Callers keep
	// the empty Text either way; this only exists so malformed input can
	// be logged.
	Terminated bool
}

// Merged reports whether the directive requests a merged region.
func (d Directive) Merged() bool { return d.MergeSpan >= 0 }

// FontSize returns the font size in points for the directive's heading
// level.
func (d Directive) FontSize() float64 { return float64(20 - 2*d.Heading) }

// Key returns the style-cache key for the directive: the heading digit
// followed by B, I and U letters for the set flags. Center and merge span
// are deliberately not part of the key; they are applied per cell.
func (d Directive) Key() string {
	buf := make([]byte, 0, 4)
	if d.Heading > 0 {
		buf = append(buf, byte('0'+d.Heading))
	}
	if d.Bold {
		buf = append(buf, 'B')
	}
	if d.Italic {
		buf = append(buf, 'I')
	}
	if d.Underline {
		buf = append(buf, 'U')
	}
	return string(buf)
}

// Parse scans a {flags}text string into a Directive. Input without a
// leading '{' is returned unchanged as Text with default styling.
func Parse(s string) Directive {
	d := Directive{Heading: DefaultHeading, MergeSpan: -1}

	if len(s) == 0 || s[0] != '{' {
		d.Text = s
		d.Terminated = true
		return d
	}

	i := 1
	mergeMode := false
	for ; i < len(s) && s[i] != '}'; i++ {
		c := s[i]
		switch c {
		case 'u', 'U':
			d.Underline = true
		case 'b', 'B':
			d.Bold = true
		case 'i', 'I':
			d.Italic = true
		case 'c', 'C':
			d.Center = true
		case '>':
			mergeMode = true
			if d.MergeSpan < 0 {
				d.MergeSpan = 0
			}
		default:
			if mergeMode {
				if c >= '0' && c <= '9' {
					d.MergeSpan = int(c - '0')
				}
			} else if c >= '1' && c <= '4' {
				d.Heading = int(c - '0')
			}
		}
	}

	if i < len(s) {
		d.Text = s[i+1:]
		d.Terminated = true
	}
	return d
}
