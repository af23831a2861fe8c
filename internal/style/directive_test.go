package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Directive
	}{
		{
			name: "bold only",
			in:   "{B}Hello",
			want: Directive{Bold: true, Heading: 5, MergeSpan: -1, Text: "Hello", Terminated: true},
		},
		{
			name: "merge span",
			in:   "{>3}Name",
			want: Directive{Heading: 5, MergeSpan: 3, Text: "Name", Terminated: true},
		},
		{
			name: "combined flags",
			in:   "{BUC3>6}Total",
			want: Directive{Bold: true, Underline: true, Center: true, Heading: 3, MergeSpan: 6, Text: "Total", Terminated: true},
		},
		{
			name: "lowercase flags",
			in:   "{biu}x",
			want: Directive{Bold: true, Italic: true, Underline: true, Heading: 5, MergeSpan: -1, Text: "x", Terminated: true},
		},
		{
			name: "empty directive",
			in:   "{}text",
			want: Directive{Heading: 5, MergeSpan: -1, Text: "text", Terminated: true},
		},
		{
			name: "directive is whole string",
			in:   "{B}",
			want: Directive{Bold: true, Heading: 5, MergeSpan: -1, Text: "", Terminated: true},
		},
		{
			name: "unterminated directive loses text",
			in:   "{Bnever closed",
			want: Directive{Bold: true, Heading: 5, MergeSpan: -1, Text: "", Terminated: false},
		},
		{
			name: "no directive",
			in:   "plain value",
			want: Directive{Heading: 5, MergeSpan: -1, Text: "plain value", Terminated: true},
		},
		{
			name: "empty string",
			in:   "",
			want: Directive{Heading: 5, MergeSpan: -1, Text: "", Terminated: true},
		},
		{
			name: "heading digit out of range ignored",
			in:   "{7}x",
			want: Directive{Heading: 5, MergeSpan: -1, Text: "x", Terminated: true},
		},
		{
			name: "unrecognized characters ignored",
			in:   "{z!B}x",
			want: Directive{Bold: true, Heading: 5, MergeSpan: -1, Text: "x", Terminated: true},
		},
		{
			name: "merge span zero",
			in:   "{>0}x",
			want: Directive{Heading: 5, MergeSpan: 0, Text: "x", Terminated: true},
		},
		{
			name: "merge flag without digit",
			in:   "{>}x",
			want: Directive{Heading: 5, MergeSpan: 0, Text: "x", Terminated: true},
		},
		{
			name: "last merge digit wins",
			in:   "{>39}x",
			want: Directive{Heading: 5, MergeSpan: 9, Text: "x", Terminated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{B}x", "5B"},
		{"{BUC3>6}x", "3BU"},
		{"{biu2}x", "2BIU"},
		{"{}x", "5"},
		{"{C}x", "5"}, // center is not part of the key
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in).Key(), "key for %q", tt.in)
	}
}

func TestFontSize(t *testing.T) {
	// 20 - 2*level, including the default level 5.
	assert.Equal(t, 10.0, Parse("{}x").FontSize())
	assert.Equal(t, 14.0, Parse("{3}x").FontSize())
	assert.Equal(t, 18.0, Parse("{1}x").FontSize())
}
