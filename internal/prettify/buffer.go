package prettify

// DualViewBuffer pairs a source block with at most one rendered view.
// The render is tagged with the width it was produced at; a width change
// invalidates it. The buffer owns the raw/rendered display toggle.
type DualViewBuffer struct {
	source      ContentBlock
	fingerprint Fingerprint

	rendered    *RenderedContent
	renderWidth int

	mode ViewMode
}

// NewDualViewBuffer wraps a source block. The fingerprint is computed
// once here; the block never mutates afterward.
func NewDualViewBuffer(source ContentBlock) *DualViewBuffer {
	return &DualViewBuffer{
		source:      source,
		fingerprint: FingerprintBlock(&source),
		renderWidth: -1,
		mode:        ViewRendered,
	}
}

func (b *DualViewBuffer) Source() *ContentBlock    { return &b.source }
func (b *DualViewBuffer) Fingerprint() Fingerprint { return b.fingerprint }
func (b *DualViewBuffer) Mode() ViewMode           { return b.mode }

// RowRange returns the grid rows the source block covers.
func (b *DualViewBuffer) RowRange() RowRange {
	return RowRange{Start: b.source.StartRow, End: b.source.EndRow}
}

// SetRendered stores a render produced at the given terminal width,
// replacing any previous one.
func (b *DualViewBuffer) SetRendered(content *RenderedContent, width int) {
	b.rendered = content
	b.renderWidth = width
}

// Rendered returns the stored render if it matches the requested width.
func (b *DualViewBuffer) Rendered(width int) (*RenderedContent, bool) {
	if b.rendered == nil || b.renderWidth != width {
		return nil, false
	}
	return b.rendered, true
}

// HasRendered reports whether any render is stored, at any width.
func (b *DualViewBuffer) HasRendered() bool { return b.rendered != nil }

// InvalidateRender drops the stored render, forcing the next display to
// re-render or fall back to raw.
func (b *DualViewBuffer) InvalidateRender() {
	b.rendered = nil
	b.renderWidth = -1
}

// ToggleMode flips between raw and rendered display and returns the new
// mode.
func (b *DualViewBuffer) ToggleMode() ViewMode {
	if b.mode == ViewRendered {
		b.mode = ViewRaw
	} else {
		b.mode = ViewRendered
	}
	return b.mode
}

func (b *DualViewBuffer) SetMode(mode ViewMode) { b.mode = mode }

// DisplayLines returns the lines the current mode shows. Rendered mode
// falls back to the raw source when no render is stored.
func (b *DualViewBuffer) DisplayLines() []StyledLine {
	if b.mode == ViewRendered && b.rendered != nil {
		return b.rendered.Lines
	}
	lines := make([]StyledLine, len(b.source.Lines))
	for i, l := range b.source.Lines {
		lines[i] = PlainLine(l)
	}
	return lines
}

// SourceLineAt maps a displayed line index back to a source line index,
// or -1 when the line is synthetic or out of range.
func (b *DualViewBuffer) SourceLineAt(displayLine int) int {
	if b.mode == ViewRendered && b.rendered != nil {
		return b.rendered.SourceLineFor(displayLine)
	}
	if displayLine >= 0 && displayLine < len(b.source.Lines) {
		return displayLine
	}
	return -1
}
