package config

import (
	"regexp"
	"strings"
)

// defaultTitleStyle is applied to titles that carry no style directive of
// their own: bold, underlined, centered, heading level 3, merged across
// seven columns.
const defaultTitleStyle = "{BUC3>6}"

var tabSpecPattern = regexp.MustCompile(`^(\[[^\[]*\])*$`)

// StyledTitle prefixes a bare title with the default title style. Titles
// that already start with a directive pass through unchanged.
func StyledTitle(title string) string {
	if title == "" || strings.HasPrefix(title, "{") {
		return title
	}
	return defaultTitleStyle + title
}

// ParseTabSpec parses a sheet-name specification of the form
// "[name|title][name2]...". Each bracketed entry names one sheet; the
// optional |title part sets that sheet's title, defaulting to the name.
// A malformed spec disables configured tabs entirely rather than failing.
func ParseTabSpec(spec string) (names, titles []string) {
	if spec == "" || !tabSpecPattern.MatchString(spec) {
		return nil, nil
	}
	for _, entry := range strings.Split(spec[1:len(spec)-1], "][") {
		if entry == "" {
			continue
		}
		name, rest, _ := strings.Cut(entry, "|")
		title, _, _ := strings.Cut(rest, "|")
		if title == "" {
			title = name
		}
		names = append(names, name)
		titles = append(titles, StyledTitle(title))
	}
	return names, titles
}
