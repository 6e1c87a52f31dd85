package formats

import (
	"regexp"
	"strings"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const markdownFormatID = "markdown"

// NewMarkdownDetector recognizes markdown prose. Fenced code blocks are
// definitive; everything else accumulates weight.
func NewMarkdownDetector() *prettify.RegexDetector {
	return prettify.NewRegexDetector(markdownFormatID, 30).
		Threshold(0.6).
		MinMatchingRules(1).
		ShortCircuit(true).
		Rule("md_fenced_code", "^```\\w*\\s*$", 0.8, prettify.RuleAnyLine, prettify.Definitive).
		Rule("md_fenced_tilde", `^~~~\w*\s*$`, 0.8, prettify.RuleAnyLine, prettify.Definitive).
		Rule("md_atx_header", `^#{1,6}\s+\S`, 0.5, prettify.RuleAnyLine, prettify.Strong).
		Rule("md_table", `^\|.*\|.*\|`, 0.4, prettify.RuleAnyLine, prettify.Strong).
		Rule("md_table_separator", `^\|[\s\-:|]+\|$`, 0.3, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_bold", `\*\*[^*]+\*\*`, 0.2, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_italic", `(?:^|[^*])\*[^*]+\*(?:[^*]|$)`, 0.15, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_link", `\[[^\]]+\]\([^)]+\)`, 0.2, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_list_bullet", `^\s*[-*+]\s+\S`, 0.15, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_list_ordered", `^\s*\d+[.)]\s+\S`, 0.15, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_blockquote", `^>\s+`, 0.15, prettify.RuleAnyLine, prettify.Supporting).
		Rule("md_inline_code", "`[^`]+`", 0.15, prettify.RuleAnyLine, prettify.Supporting).
		Build()
}

// MarkdownRenderer styles markdown line by line, keeping a one-to-one
// source mapping. Fenced code regions are syntax highlighted with the
// fence's language tag.
type MarkdownRenderer struct{}

func (MarkdownRenderer) FormatID() string { return markdownFormatID }

var (
	mdHeader    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	mdBullet    = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.*)$`)
	mdFence     = regexp.MustCompile("^(```|~~~)(\\w*)\\s*$")
	mdInline    = regexp.MustCompile("(\\*\\*[^*]+\\*\\*)|(`[^`]+`)|(\\[[^\\]]+\\]\\([^)]+\\))")
	mdQuote     = regexp.MustCompile(`^>\s?(.*)$`)
	mdTableLine = regexp.MustCompile(`^\|.*\|`)
)

func (MarkdownRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	theme := cfg.Theme
	lines := make([]prettify.StyledLine, 0, block.LineCount())

	inFence := false
	fenceLang := ""
	var fenceBuf []string

	flushFence := func() {
		highlighted := highlightLines(strings.Join(fenceBuf, "\n"), fenceLang, theme.ChromaStyle)
		for len(highlighted) < len(fenceBuf) {
			highlighted = append(highlighted, prettify.StyledLine{})
		}
		lines = append(lines, highlighted[:len(fenceBuf)]...)
		fenceBuf = nil
	}

	for _, raw := range block.Lines {
		if m := mdFence.FindStringSubmatch(raw); m != nil {
			if inFence {
				flushFence()
				inFence = false
			} else {
				inFence = true
				fenceLang = m[2]
			}
			lines = append(lines, prettify.StyledLine{Segments: []prettify.TextSegment{
				{Text: raw, Style: prettify.Style{FG: theme.Dim}},
			}})
			continue
		}
		if inFence {
			fenceBuf = append(fenceBuf, raw)
			continue
		}
		lines = append(lines, styleMarkdownLine(raw, theme))
	}
	if inFence {
		// Unterminated fence; highlight what we have.
		flushFence()
	}

	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: identityMapping(len(lines)),
		FormatBadge: markdownFormatID,
	}, nil
}

func styleMarkdownLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	if m := mdHeader.FindStringSubmatch(raw); m != nil {
		return prettify.StyledLine{Segments: []prettify.TextSegment{
			{Text: m[1] + " ", Style: prettify.Style{FG: theme.Dim}},
			{Text: m[2], Style: prettify.Style{FG: theme.Header, Bold: true}},
		}}
	}
	if m := mdQuote.FindStringSubmatch(raw); m != nil {
		return prettify.StyledLine{Segments: []prettify.TextSegment{
			{Text: "> ", Style: prettify.Style{FG: theme.Dim}},
			{Text: m[1], Style: prettify.Style{FG: theme.Dim, Italic: true}},
		}}
	}
	if mdTableLine.MatchString(raw) {
		return styleTableLine(raw, theme)
	}
	if m := mdBullet.FindStringSubmatch(raw); m != nil {
		line := prettify.StyledLine{Segments: []prettify.TextSegment{
			{Text: m[1]},
			{Text: m[2] + " ", Style: prettify.Style{FG: theme.Accent}},
		}}
		line.Segments = append(line.Segments, styleInline(m[3], theme)...)
		return line
	}
	return prettify.StyledLine{Segments: styleInline(raw, theme)}
}

func styleTableLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	var line prettify.StyledLine
	for _, part := range strings.SplitAfter(raw, "|") {
		if part == "" {
			continue
		}
		cell := strings.TrimSuffix(part, "|")
		if cell != "" {
			line.Segments = append(line.Segments, styleInline(cell, theme)...)
		}
		if strings.HasSuffix(part, "|") {
			line.Segments = append(line.Segments, prettify.TextSegment{Text: "|", Style: prettify.Style{FG: theme.Dim}})
		}
	}
	return line
}

// styleInline colors bold spans, inline code, and links within a line.
func styleInline(text string, theme *prettify.Theme) []prettify.TextSegment {
	if text == "" {
		return nil
	}
	var segs []prettify.TextSegment
	last := 0
	for _, loc := range mdInline.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, prettify.TextSegment{Text: text[last:loc[0]]})
		}
		span := text[loc[0]:loc[1]]
		switch {
		case strings.HasPrefix(span, "**"):
			segs = append(segs, prettify.TextSegment{Text: span, Style: prettify.Style{Bold: true}})
		case strings.HasPrefix(span, "`"):
			segs = append(segs, prettify.TextSegment{Text: span, Style: prettify.Style{FG: theme.String}})
		default:
			segs = append(segs, prettify.TextSegment{Text: span, Style: prettify.Style{FG: theme.Accent, Underline: true}})
		}
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, prettify.TextSegment{Text: text[last:]})
	}
	return segs
}
