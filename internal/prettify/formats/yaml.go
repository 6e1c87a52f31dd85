package formats

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const yamlFormatID = "yaml"

// NewYAMLDetector recognizes YAML documents. Bare key/value prose is
// too common for single-rule matches, so two rules must agree.
func NewYAMLDetector() *prettify.RegexDetector {
	return prettify.NewRegexDetector(yamlFormatID, 40).
		Threshold(0.6).
		MinMatchingRules(2).
		ShortCircuit(false).
		RuleN("yaml_doc_start", `^---\s*$`, 0.5, prettify.RuleFirstLines, 3, prettify.Definitive).
		Rule("yaml_key_value", `^[a-zA-Z_][\w.\-]*:(\s|$)`, 0.4, prettify.RuleAnyLine, prettify.Strong).
		Rule("yaml_nested", `^\s{2,}[a-zA-Z_][\w.\-]*:(\s|$)`, 0.25, prettify.RuleAnyLine, prettify.Supporting).
		Rule("yaml_list", `^\s*-\s+\S`, 0.2, prettify.RuleAnyLine, prettify.Supporting).
		Build()
}

// YAMLRenderer validates the document and colors keys and typed values
// without reformatting, keeping the one-to-one source mapping.
type YAMLRenderer struct{}

func (YAMLRenderer) FormatID() string { return yamlFormatID }

var (
	yamlKeyLine = regexp.MustCompile(`^(\s*(?:-\s+)?)([\w.\-]+)(:\s*)(.*)$`)
	yamlComment = regexp.MustCompile(`^\s*#`)
	yamlNumber  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	yamlBool    = regexp.MustCompile(`^(true|false|yes|no|null|~)$`)
)

func (YAMLRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(block.FullText()), &doc); err != nil {
		return nil, &prettify.RenderError{FormatID: yamlFormatID, Reason: "invalid yaml"}
	}

	theme := cfg.Theme
	lines := make([]prettify.StyledLine, 0, block.LineCount())
	for _, raw := range block.Lines {
		lines = append(lines, styleYAMLLine(raw, theme))
	}
	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: identityMapping(len(lines)),
		FormatBadge: yamlFormatID,
	}, nil
}

func styleYAMLLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	if yamlComment.MatchString(raw) {
		return prettify.StyledLine{Segments: []prettify.TextSegment{
			{Text: raw, Style: prettify.Style{FG: theme.Dim, Italic: true}},
		}}
	}
	m := yamlKeyLine.FindStringSubmatch(raw)
	if m == nil {
		return prettify.PlainLine(raw)
	}
	line := prettify.StyledLine{}
	if m[1] != "" {
		line.Segments = append(line.Segments, prettify.TextSegment{Text: m[1], Style: prettify.Style{FG: theme.Accent}})
	}
	line.Segments = append(line.Segments,
		prettify.TextSegment{Text: m[2], Style: prettify.Style{FG: theme.Key}},
		prettify.TextSegment{Text: m[3], Style: prettify.Style{FG: theme.Dim}})
	if m[4] != "" {
		line.Segments = append(line.Segments, yamlValueSegment(m[4], theme))
	}
	return line
}

func yamlValueSegment(val string, theme *prettify.Theme) prettify.TextSegment {
	switch {
	case yamlNumber.MatchString(val):
		return prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.Number}}
	case yamlBool.MatchString(val):
		return prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.Accent}}
	default:
		return prettify.TextSegment{Text: val, Style: prettify.Style{FG: theme.String}}
	}
}
