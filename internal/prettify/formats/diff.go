package formats

import (
	"strings"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const diffFormatID = "diff"

// NewDiffDetector recognizes unified diffs. Headers and hunk markers
// are definitive on their own.
func NewDiffDetector() *prettify.RegexDetector {
	return prettify.NewRegexDetector(diffFormatID, 60).
		Threshold(0.6).
		MinMatchingRules(1).
		ShortCircuit(true).
		RuleN("diff_git_header", `^diff --git\s+`, 0.9, prettify.RuleFirstLines, 5, prettify.Definitive).
		Rule("diff_unified_header", `(?m)^---\s+\S+.*\n\+\+\+\s+\S+`, 0.9, prettify.RuleFullBlock, prettify.Definitive).
		Rule("diff_hunk", `^@@\s+-\d+,?\d*\s+\+\d+,?\d*\s+@@`, 0.8, prettify.RuleAnyLine, prettify.Definitive).
		Rule("diff_add_line", `^\+[^+]`, 0.1, prettify.RuleAnyLine, prettify.Supporting).
		Rule("diff_remove_line", `^-[^-]`, 0.1, prettify.RuleAnyLine, prettify.Supporting).
		Rule("diff_git_context", `^git\s+(diff|log|show)`, 0.3, prettify.RulePrecedingCommand, prettify.Supporting).
		Build()
}

// DiffRenderer colorizes an existing unified diff line by line. It
// never computes a diff itself.
type DiffRenderer struct{}

func (DiffRenderer) FormatID() string { return diffFormatID }

func (DiffRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	theme := cfg.Theme
	lines := make([]prettify.StyledLine, 0, block.LineCount())
	for _, raw := range block.Lines {
		lines = append(lines, styleDiffLine(raw, theme))
	}
	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: identityMapping(len(lines)),
		FormatBadge: diffFormatID,
	}, nil
}

func styleDiffLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	var style prettify.Style
	switch {
	case strings.HasPrefix(raw, "diff --git"),
		strings.HasPrefix(raw, "index "),
		strings.HasPrefix(raw, "+++"),
		strings.HasPrefix(raw, "---"):
		style = prettify.Style{FG: theme.Header, Bold: true}
	case strings.HasPrefix(raw, "@@"):
		style = prettify.Style{FG: theme.Accent}
	case strings.HasPrefix(raw, "+"):
		style = prettify.Style{FG: theme.Addition}
	case strings.HasPrefix(raw, "-"):
		style = prettify.Style{FG: theme.Deletion}
	case strings.HasPrefix(raw, "\\"):
		// "\ No newline at end of file"
		style = prettify.Style{FG: theme.Dim, Italic: true}
	}
	return prettify.StyledLine{Segments: []prettify.TextSegment{{Text: raw, Style: style}}}
}
