package formats

import (
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

const codeFormatID = "code"

// codeCandidates bounds the classifier's search to languages that show
// up in terminal output often enough to be worth highlighting.
var codeCandidates = []string{
	"Go", "Python", "JavaScript", "TypeScript", "Rust", "C", "C++",
	"Java", "Ruby", "Shell", "SQL", "Kotlin", "Swift",
}

// CodeDetector classifies a block as source code using enry's bayesian
// classifier. It runs at the lowest priority; structured formats get
// first claim on the block.
type CodeDetector struct {
	minLines int
}

// NewCodeDetector builds the classifier-backed detector.
func NewCodeDetector() *CodeDetector {
	return &CodeDetector{minLines: 3}
}

func (d *CodeDetector) FormatID() string { return codeFormatID }
func (d *CodeDetector) Priority() int    { return 10 }

// QuickMatch always passes; classification has no cheap line-level
// prefilter.
func (d *CodeDetector) QuickMatch([]string) bool { return true }

func (d *CodeDetector) Detect(block *prettify.ContentBlock) *prettify.DetectionResult {
	if block.LineCount() < d.minLines {
		return nil
	}
	lang, safe := classifyCode(block.FullText())
	if lang == "" {
		return nil
	}
	confidence := 0.55
	if safe {
		confidence = 0.75
	}
	return &prettify.DetectionResult{
		FormatID:     codeFormatID,
		Confidence:   confidence,
		MatchedRules: []string{"classifier:" + lang},
		Source:       prettify.SourceHeuristicScan,
	}
}

func classifyCode(text string) (string, bool) {
	lang, safe := enry.GetLanguageByClassifier([]byte(text), codeCandidates)
	if lang == "" || strings.EqualFold(lang, "Text") {
		return "", false
	}
	return lang, safe
}

// CodeRenderer syntax-highlights the block with chroma, re-classifying
// the language from content.
type CodeRenderer struct{}

func (CodeRenderer) FormatID() string { return codeFormatID }

func (CodeRenderer) Render(block *prettify.ContentBlock, cfg *prettify.RendererConfig) (*prettify.RenderedContent, error) {
	text := block.FullText()
	lang, _ := classifyCode(text)
	lines := highlightLines(text, lang, cfg.Theme.ChromaStyle)
	for len(lines) < block.LineCount() {
		lines = append(lines, prettify.StyledLine{})
	}
	lines = lines[:block.LineCount()]
	return &prettify.RenderedContent{
		Lines:       lines,
		LineMapping: identityMapping(len(lines)),
		FormatBadge: codeFormatID,
	}, nil
}
