// Package formats ships the built-in format detectors and renderers:
// json, markdown, diff, yaml, code, and logline.
package formats

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

// highlightLines syntax-highlights code into styled lines. An unknown
// language falls back to content analysis, then to the plaintext lexer.
func highlightLines(code, lang, styleName string) []prettify.StyledLine {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plainLines(code)
	}

	var (
		out  []prettify.StyledLine
		line prettify.StyledLine
	)
	for _, token := range iterator.Tokens() {
		seg := segmentStyle(style, token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				out = append(out, line)
				line = prettify.StyledLine{}
			}
			if part != "" {
				line.Segments = append(line.Segments, prettify.TextSegment{Text: part, Style: seg})
			}
		}
	}
	if len(line.Segments) > 0 {
		out = append(out, line)
	}
	return out
}

func segmentStyle(style *chroma.Style, tokenType chroma.TokenType) prettify.Style {
	entry := style.Get(tokenType)
	var s prettify.Style
	if entry.Colour.IsSet() {
		s.FG = entry.Colour.String()
	}
	if entry.Bold == chroma.Yes {
		s.Bold = true
	}
	if entry.Italic == chroma.Yes {
		s.Italic = true
	}
	if entry.Underline == chroma.Yes {
		s.Underline = true
	}
	return s
}

func plainLines(code string) []prettify.StyledLine {
	raw := strings.Split(code, "\n")
	out := make([]prettify.StyledLine, len(raw))
	for i, l := range raw {
		out[i] = prettify.PlainLine(l)
	}
	return out
}

// identityMapping maps n rendered lines one-to-one onto source lines.
func identityMapping(n int) []prettify.SourceLineMapping {
	m := make([]prettify.SourceLineMapping, n)
	for i := range m {
		m[i] = prettify.SourceLineMapping{RenderedLine: i, SourceLine: i}
	}
	return m
}
