package formats

import (
	"github.com/samsaffron/term-prettify/internal/prettify"
)

// RegisterAll installs every built-in detector and renderer. Detector
// priority decides who wins confidence ties: diff, then json, yaml,
// markdown, logline, and code last.
func RegisterAll(r *prettify.Registry) {
	r.RegisterDetector(NewDiffDetector())
	r.RegisterDetector(NewJSONDetector())
	r.RegisterDetector(NewYAMLDetector())
	r.RegisterDetector(NewMarkdownDetector())
	r.RegisterDetector(NewLogDetector())
	r.RegisterDetector(NewCodeDetector())

	r.RegisterRenderer(DiffRenderer{})
	r.RegisterRenderer(JSONRenderer{})
	r.RegisterRenderer(YAMLRenderer{})
	r.RegisterRenderer(MarkdownRenderer{})
	r.RegisterRenderer(LogRenderer{})
	r.RegisterRenderer(CodeRenderer{})
}
