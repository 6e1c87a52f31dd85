package formats

import (
	"regexp"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const logFormatID = "logline"

// NewLogDetector recognizes application log output: timestamped lines
// with severity levels. Two rules must agree so prose mentioning
// "ERROR" once does not match.
func NewLogDetector() *prettify.RegexDetector {
	return prettify.NewRegexDetector(logFormatID, 20).
		Threshold(0.5).
		MinMatchingRules(2).
		ShortCircuit(false).
		Rule("log_timestamp_level", `^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}\S*\s+\[?(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL)\]?`, 0.7, prettify.RuleAnyLine, prettify.Strong).
		Rule("log_level_prefix", `^\s*\[?(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL)\]?\s`, 0.5, prettify.RuleAnyLine, prettify.Strong).
		Rule("log_iso_timestamp", `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`, 0.3, prettify.RuleAnyLine, prettify.Supporting).
		Rule("log_syslog", `^[A-Z][a-z]{2}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\s+\S+`, 0.4, prettify.RuleAnyLine, prettify.Strong).
		Rule("log_json_line", `^\{"(timestamp|time|ts|level|msg|message)":`, 0.6, prettify.RuleAnyLine, prettify.Strong).
		Build()
}

// LogRenderer dims timestamps and colors severity levels, leaving the
// message text untouched.
type LogRenderer struct{}

func (LogRenderer) FormatID() string { return logFormatID }

var (
	logTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\s*`)
	logLevel     = regexp.MustCompile(`^\[?(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL)\]?:?\s*`)
)

func (LogRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	theme := cfg.Theme
	lines := make([]prettify.StyledLine, 0, block.LineCount())
	for _, raw := range block.Lines {
		lines = append(lines, styleLogLine(raw, theme))
	}
	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: identityMapping(len(lines)),
		FormatBadge: logFormatID,
	}, nil
}

func styleLogLine(raw string, theme *prettify.Theme) prettify.StyledLine {
	var line prettify.StyledLine
	rest := raw

	if ts := logTimestamp.FindString(rest); ts != "" {
		line.Segments = append(line.Segments, prettify.TextSegment{Text: ts, Style: prettify.Style{FG: theme.Dim}})
		rest = rest[len(ts):]
	}
	if m := logLevel.FindStringSubmatch(rest); m != nil {
		line.Segments = append(line.Segments, prettify.TextSegment{
			Text:  m[0],
			Style: prettify.Style{FG: levelColor(m[1], theme), Bold: levelBold(m[1])},
		})
		rest = rest[len(m[0]):]
	}
	if rest != "" {
		line.Segments = append(line.Segments, prettify.TextSegment{Text: rest})
	}
	if len(line.Segments) == 0 {
		return prettify.PlainLine(raw)
	}
	return line
}

func levelColor(level string, theme *prettify.Theme) string {
	switch level {
	case "ERROR", "FATAL":
		return theme.Error
	case "WARN", "WARNING":
		return theme.Warn
	case "INFO":
		return theme.Accent
	default:
		return theme.Dim
	}
}

func levelBold(level string) bool {
	return level == "ERROR" || level == "FATAL"
}
