package prettify

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Theme names the colors renderers draw with. Values are
// lipgloss-compatible color strings; defaults use the terminal's ANSI
// palette so rendered output follows the user's scheme.
type Theme struct {
	Key      string
	String   string
	Number   string
	Dim      string
	Error    string
	Warn     string
	Accent   string
	Header   string
	Addition string
	Deletion string

	// ChromaStyle names the chroma style used for syntax-highlighted
	// code regions.
	ChromaStyle string
}

// DefaultTheme maps roles onto the standard ANSI palette.
func DefaultTheme() *Theme {
	return &Theme{
		Key:         "6",
		String:      "2",
		Number:      "11",
		Dim:         "8",
		Error:       "1",
		Warn:        "3",
		Accent:      "14",
		Header:      "12",
		Addition:    "2",
		Deletion:    "1",
		ChromaStyle: "monokai",
	}
}

// ApplyOverrides replaces theme colors from a config map. Unknown keys
// are ignored so configs can carry entries for newer releases.
func (t *Theme) ApplyOverrides(overrides map[string]string) {
	for key, val := range overrides {
		if val == "" {
			continue
		}
		switch key {
		case "key":
			t.Key = val
		case "string":
			t.String = val
		case "number":
			t.Number = val
		case "dim":
			t.Dim = val
		case "error":
			t.Error = val
		case "warn":
			t.Warn = val
		case "accent":
			t.Accent = val
		case "header":
			t.Header = val
		case "addition":
			t.Addition = val
		case "deletion":
			t.Deletion = val
		case "chroma_style":
			t.ChromaStyle = val
		}
	}
}

// BadgeLine builds the synthetic header line shown above rendered
// content, e.g. "── json ────". The trailing rule fills the width.
func (t *Theme) BadgeLine(badge string, width int) StyledLine {
	label := " " + badge + " "
	lead := "──"
	tail := width - runewidth.StringWidth(lead) - runewidth.StringWidth(label)
	if tail < 2 {
		tail = 2
	}
	return StyledLine{Segments: []TextSegment{
		{Text: lead, Style: Style{FG: t.Dim}},
		{Text: label, Style: Style{FG: t.Accent, Bold: true}},
		{Text: strings.Repeat("─", tail), Style: Style{FG: t.Dim}},
	}}
}
