// Package prettify detects structured content in terminal output and
// renders it with styling. Content blocks flow from a boundary detector
// through format detection into a render cache; the pipeline keeps the
// resulting blocks queryable by row.
package prettify

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DetectionScope controls which output regions are scanned automatically.
type DetectionScope int

const (
	// ScopeAll scans every emitted block.
	ScopeAll DetectionScope = iota
	// ScopeCommandOutput scans only blocks between command start/end markers.
	ScopeCommandOutput
	// ScopeManualOnly never scans automatically; blocks are only
	// prettified via explicit triggers.
	ScopeManualOnly
)

func (s DetectionScope) String() string {
	switch s {
	case ScopeCommandOutput:
		return "command_output"
	case ScopeManualOnly:
		return "manual_only"
	default:
		return "all"
	}
}

// ParseDetectionScope maps a config string to a scope. Unknown values
// fall back to ScopeAll so a bad config line cannot disable detection.
func ParseDetectionScope(s string) (DetectionScope, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return ScopeAll, true
	case "command_output":
		return ScopeCommandOutput, true
	case "manual_only":
		return ScopeManualOnly, true
	default:
		return ScopeAll, false
	}
}

// DetectionSource records how a block came to be detected.
type DetectionSource int

const (
	// SourceHeuristicScan means the block matched during a normal scan.
	SourceHeuristicScan DetectionSource = iota
	// SourceTriggerInvoked means the user forced prettification.
	SourceTriggerInvoked
	// SourceExpansionReplay means the block was re-detected after a
	// collapsed region was expanded.
	SourceExpansionReplay
)

func (s DetectionSource) String() string {
	switch s {
	case SourceTriggerInvoked:
		return "trigger"
	case SourceExpansionReplay:
		return "expansion"
	default:
		return "heuristic"
	}
}

// ViewMode selects which face of a DualViewBuffer is displayed.
type ViewMode int

const (
	ViewRendered ViewMode = iota
	ViewRaw
)

// ContentBlock is an immutable run of terminal lines handed to detection.
// StartRow is inclusive, EndRow exclusive, in absolute grid rows.
type ContentBlock struct {
	Lines            []string
	PrecedingCommand string
	StartRow         int
	EndRow           int
	Timestamp        time.Time
}

// NewContentBlock builds a block whose row range covers exactly its lines.
func NewContentBlock(lines []string, precedingCommand string, startRow int) ContentBlock {
	return ContentBlock{
		Lines:            lines,
		PrecedingCommand: precedingCommand,
		StartRow:         startRow,
		EndRow:           startRow + len(lines),
		Timestamp:        time.Now(),
	}
}

func (b *ContentBlock) LineCount() int { return len(b.Lines) }

// FirstLines returns up to n leading lines without copying.
func (b *ContentBlock) FirstLines(n int) []string {
	if n > len(b.Lines) {
		n = len(b.Lines)
	}
	return b.Lines[:n]
}

// LastLines returns up to n trailing lines without copying.
func (b *ContentBlock) LastLines(n int) []string {
	if n > len(b.Lines) {
		n = len(b.Lines)
	}
	return b.Lines[len(b.Lines)-n:]
}

func (b *ContentBlock) FullText() string { return strings.Join(b.Lines, "\n") }

// RowRange is a half-open [Start, End) span of absolute grid rows.
type RowRange struct {
	Start int
	End   int
}

// Overlaps reports whether the two half-open ranges share any row.
func (r RowRange) Overlaps(o RowRange) bool {
	return r.Start < o.End && r.End > o.Start
}

// Contains reports whether o lies entirely inside r.
func (r RowRange) Contains(o RowRange) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// ContainsRow reports whether row falls inside the range.
func (r RowRange) ContainsRow(row int) bool {
	return row >= r.Start && row < r.End
}

// DetectionResult is a detector's verdict on a block.
type DetectionResult struct {
	FormatID     string
	Confidence   float64
	MatchedRules []string
	Source       DetectionSource
}

// Style holds display attributes for a text segment. Colors are
// lipgloss-compatible strings (named, ANSI index, or hex); empty means
// the terminal default.
type Style struct {
	FG        string
	BG        string
	Bold      bool
	Italic    bool
	Underline bool
	Faint     bool
}

// Lipgloss converts the style to a lipgloss.Style for terminal output.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.FG != "" {
		st = st.Foreground(lipgloss.Color(s.FG))
	}
	if s.BG != "" {
		st = st.Background(lipgloss.Color(s.BG))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Faint {
		st = st.Faint(true)
	}
	return st
}

// IsZero reports whether the style carries no attributes.
func (s Style) IsZero() bool { return s == Style{} }

// TextSegment is a run of text sharing one style.
type TextSegment struct {
	Text  string
	Style Style
}

// StyledLine is a rendered output line.
type StyledLine struct {
	Segments []TextSegment
}

// Text returns the line's content with styling stripped.
func (l StyledLine) Text() string {
	var sb strings.Builder
	for _, seg := range l.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// ANSI renders the line with escape sequences applied per segment.
func (l StyledLine) ANSI() string {
	var sb strings.Builder
	for _, seg := range l.Segments {
		if seg.Style.IsZero() {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(seg.Style.Lipgloss().Render(seg.Text))
	}
	return sb.String()
}

// PlainLine wraps unstyled text as a single-segment line.
func PlainLine(text string) StyledLine {
	return StyledLine{Segments: []TextSegment{{Text: text}}}
}

// SourceLineMapping ties a rendered line back to the source line that
// produced it. SourceLine is -1 for synthetic lines (badges, rules).
type SourceLineMapping struct {
	RenderedLine int
	SourceLine   int
}

// RenderedContent is the immutable output of one render.
type RenderedContent struct {
	Lines       []StyledLine
	LineMapping []SourceLineMapping
	FormatBadge string
}

// LineCount returns the number of rendered lines.
func (r *RenderedContent) LineCount() int { return len(r.Lines) }

// SourceLineFor returns the source line behind a rendered line, or -1.
func (r *RenderedContent) SourceLineFor(renderedLine int) int {
	for _, m := range r.LineMapping {
		if m.RenderedLine == renderedLine {
			return m.SourceLine
		}
	}
	return -1
}
