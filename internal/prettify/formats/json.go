package formats

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const jsonFormatID = "json"

// NewJSONDetector recognizes JSON documents and arrays, with extra
// weight when the producing command was an HTTP or JSON tool.
func NewJSONDetector() *prettify.RegexDetector {
	return prettify.NewRegexDetector(jsonFormatID, 50).
		Threshold(0.6).
		MinMatchingRules(1).
		ShortCircuit(false).
		RuleN("json_open_brace", `^\s*\{\s*$`, 0.4, prettify.RuleFirstLines, 3, prettify.Strong).
		RuleN("json_open_bracket", `^\s*\[\s*$`, 0.35, prettify.RuleFirstLines, 3, prettify.Strong).
		Rule("json_key_value", `^\s*"[^"]+"\s*:\s*`, 0.3, prettify.RuleAnyLine, prettify.Strong).
		RuleN("json_close_brace", `^\s*\}\s*,?\s*$`, 0.2, prettify.RuleLastLines, 3, prettify.Supporting).
		Rule("json_curl_context", `^(curl|http|httpie|wget)\s+`, 0.3, prettify.RulePrecedingCommand, prettify.Supporting).
		Rule("json_jq_context", `^(jq|gron|fx)\s+`, 0.3, prettify.RulePrecedingCommand, prettify.Supporting).
		Build()
}

// JSONRenderer normalizes a JSON document with two-space indentation and
// colors keys, strings, numbers, and literals.
type JSONRenderer struct{}

func (JSONRenderer) FormatID() string { return jsonFormatID }

var (
	jsonKeyLine = regexp.MustCompile(`^(\s*)("(?:[^"\\]|\\.)*")(\s*:\s*)(.*)$`)
	jsonString  = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"`)
	jsonNumber  = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)
	jsonLiteral = regexp.MustCompile(`^(?:true|false|null)\b`)
)

// Render pretty-prints the block's JSON. Invalid JSON is a render
// error; the pipeline keeps the raw view.
func (JSONRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	src := block.FullText()
	if !gjson.Valid(src) {
		return nil, &prettify.RenderError{FormatID: jsonFormatID, Reason: "invalid json"}
	}
	formatted := strings.TrimRight(string(pretty.PrettyOptions([]byte(src), &pretty.Options{Indent: "  "})), "\n")

	theme := cfg.Theme
	rawLines := strings.Split(formatted, "\n")
	lines := make([]prettify.StyledLine, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, styleJSONLine(raw, theme))
	}

	mapping := make([]prettify.SourceLineMapping, len(lines))
	for i := range mapping {
		srcLine := -1
		if i < block.LineCount() {
			srcLine = i
		}
		mapping[i] = prettify.SourceLineMapping{RenderedLine: i, SourceLine: srcLine}
	}
	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: mapping,
		FormatBadge: jsonFormatID,
	}, nil
}

func styleJSONLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	var line prettify.StyledLine
	rest := raw
	if m := jsonKeyLine.FindStringSubmatch(raw); m != nil {
		if m[1] != "" {
			line.Segments = append(line.Segments, prettify.TextSegment{Text: m[1]})
		}
		line.Segments = append(line.Segments,
			prettify.TextSegment{Text: m[2], Style: prettify.Style{FG: theme.Key}},
			prettify.TextSegment{Text: m[3], Style: prettify.Style{FG: theme.Dim}})
		rest = m[4]
	}
	line.Segments = append(line.Segments, styleJSONValue(rest, theme)...)
	return line
}

// styleJSONValue colors the value portion of a line, leaving trailing
// punctuation dim.
func styleJSONValue(rest string, theme *prettify.Theme) []prettify.TextSegment {
	if rest == "" {
		return nil
	}
	var segs []prettify.TextSegment
	switch {
	case jsonString.MatchString(rest):
		val := jsonString.FindString(rest)
		segs = append(segs, prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.String}})
		rest = rest[len(val):]
	case jsonNumber.MatchString(rest):
		val := jsonNumber.FindString(rest)
		segs = append(segs, prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.Number}})
		rest = rest[len(val):]
	case jsonLiteral.MatchString(rest):
		val := jsonLiteral.FindString(rest)
		segs = append(segs, prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.Accent}})
		rest = rest[len(val):]
	}
	if rest != "" {
		segs = append(segs, prettify.TextSegment{Text: rest, Style: prettify.Style{FG: theme.Dim}})
	}
	return segs
}
