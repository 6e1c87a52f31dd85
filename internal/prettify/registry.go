package prettify

import (
	"fmt"
	"sort"
)

// quickMatchLines caps how many leading lines the registry's prefilter
// inspects before running full detection.
const quickMatchLines = 30

// Detector decides whether a block is in its format.
type Detector interface {
	// FormatID names the format this detector recognizes.
	FormatID() string
	// Priority orders detectors; higher runs first and wins confidence
	// ties.
	Priority() int
	// QuickMatch is a cheap prefilter over the block's leading lines.
	// Returning false skips full detection for this detector.
	QuickMatch(lines []string) bool
	// Detect scores the block. A nil result means no match.
	Detect(block *ContentBlock) *DetectionResult
}

// RendererConfig carries the display parameters a renderer needs.
type RendererConfig struct {
	TerminalWidth int
	Theme         *Theme
	CellWidthPx   float64
	CellHeightPx  float64
}

// RenderError reports a renderer failure. The pipeline absorbs these and
// keeps the block raw.
type RenderError struct {
	FormatID string
	Reason   string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s", e.FormatID, e.Reason)
}

// Renderer turns a detected block into styled output.
type Renderer interface {
	// FormatID names the format this renderer handles.
	FormatID() string
	// Render produces styled lines for the block.
	Render(block *ContentBlock, cfg *RendererConfig) (*RenderedContent, error)
}

// Registry holds the installed detectors and renderers. Detectors are
// kept sorted by descending priority.
type Registry struct {
	detectors []Detector
	renderers map[string]Renderer
	threshold float64
}

// NewRegistry builds an empty registry with the given confidence
// threshold for Detect.
func NewRegistry(threshold float64) *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
		threshold: threshold,
	}
}

// RegisterDetector inserts a detector keeping descending priority order.
// Equal priorities keep registration order.
func (r *Registry) RegisterDetector(d Detector) {
	i := sort.Search(len(r.detectors), func(i int) bool {
		return r.detectors[i].Priority() < d.Priority()
	})
	r.detectors = append(r.detectors, nil)
	copy(r.detectors[i+1:], r.detectors[i:])
	r.detectors[i] = d
}

// RegisterRenderer installs the renderer for its format, replacing any
// previous one.
func (r *Registry) RegisterRenderer(renderer Renderer) {
	r.renderers[renderer.FormatID()] = renderer
}

// Renderer returns the renderer for a format id.
func (r *Registry) Renderer(formatID string) (Renderer, bool) {
	renderer, ok := r.renderers[formatID]
	return renderer, ok
}

// Detectors returns the detectors in priority order.
func (r *Registry) Detectors() []Detector { return r.detectors }

// SetThreshold updates the minimum confidence Detect accepts.
func (r *Registry) SetThreshold(threshold float64) { r.threshold = threshold }

// Threshold returns the current confidence floor.
func (r *Registry) Threshold() float64 { return r.threshold }

// Detect runs every quick-matching detector over the block and returns
// the best result at or above the threshold, or nil. A strictly higher
// confidence replaces the incumbent; ties keep the higher-priority
// detector, which ran first.
func (r *Registry) Detect(block *ContentBlock) *DetectionResult {
	if block.LineCount() == 0 {
		return nil
	}
	head := block.FirstLines(quickMatchLines)

	var best *DetectionResult
	for _, d := range r.detectors {
		if !d.QuickMatch(head) {
			continue
		}
		result := d.Detect(block)
		if result == nil || result.Confidence < r.threshold {
			continue
		}
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}
	return best
}
