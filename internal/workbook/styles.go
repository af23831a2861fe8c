package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/sqlsheet/internal/result"
	"github.com/leapstack-labs/sqlsheet/internal/style"
)

// Numeric cell formats, matching the patterns existing consumers expect.
const (
	integerFormat    = "###########0"
	fractionalFormat = "###,###,###,##0.00"
)

// StyleCache memoizes derived workbook styles keyed by directive flag
// combination (heading digit + B/I/U). Center alignment is not part of the
// key: each entry carries a plain and a centered handle so alignment is
// applied per cell while the font style is shared. Entries live for the
// workbook's lifetime; there is no eviction.
type StyleCache struct {
	f       *excelize.File
	entries map[string]*styleEntry

	intStyle   int
	floatStyle int
}

type styleEntry struct {
	plain    int
	centered int
}

// NewStyleCache returns an empty cache bound to f. Style handles are only
// valid for the file they were created on, so the cache is rebuilt whenever
// the session starts a new workbook.
func NewStyleCache(f *excelize.File) *StyleCache {
	return &StyleCache{f: f, entries: make(map[string]*styleEntry)}
}

// Len returns the number of distinct flag combinations built so far.
func (c *StyleCache) Len() int { return len(c.entries) }

// Get returns the style handle for the directive, building it on first use.
func (c *StyleCache) Get(d style.Directive) (int, error) {
	e, ok := c.entries[d.Key()]
	if !ok {
		var err error
		e, err = c.build(d)
		if err != nil {
			return 0, err
		}
		c.entries[d.Key()] = e
	}
	if d.Center {
		return e.centered, nil
	}
	return e.plain, nil
}

func (c *StyleCache) build(d style.Directive) (*styleEntry, error) {
	font := &excelize.Font{
		Bold:   d.Bold,
		Italic: d.Italic,
		Size:   d.FontSize(),
	}
	if d.Underline {
		font.Underline = "single"
	}

	plain, err := c.f.NewStyle(&excelize.Style{Font: font})
	if err != nil {
		return nil, fmt.Errorf("create style %q: %w", d.Key(), err)
	}
	centered, err := c.f.NewStyle(&excelize.Style{
		Font:      font,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create centered style %q: %w", d.Key(), err)
	}
	return &styleEntry{plain: plain, centered: centered}, nil
}

// Numeric returns the right-aligned numeric style for an integer or
// fractional column tag.
func (c *StyleCache) Numeric(tag result.TypeTag) (int, error) {
	switch tag {
	case result.TagInteger:
		if c.intStyle == 0 {
			id, err := c.numericStyle(integerFormat)
			if err != nil {
				return 0, err
			}
			c.intStyle = id
		}
		return c.intStyle, nil
	case result.TagFractional:
		if c.floatStyle == 0 {
			id, err := c.numericStyle(fractionalFormat)
			if err != nil {
				return 0, err
			}
			c.floatStyle = id
		}
		return c.floatStyle, nil
	}
	return 0, fmt.Errorf("tag %d is not numeric", tag)
}

func (c *StyleCache) numericStyle(format string) (int, error) {
	id, err := c.f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return 0, fmt.Errorf("create numeric style: %w", err)
	}
	return id, nil
}
