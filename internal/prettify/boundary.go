package prettify

import (
	"strings"
	"time"
)

const (
	// DefaultBlankLineThreshold is how many consecutive blank lines end
	// a block.
	DefaultBlankLineThreshold = 2
	// DefaultMaxScanLines caps pending block size; a block is emitted
	// once it reaches this many lines.
	DefaultMaxScanLines = 500
	// DefaultDebounce is how long output must stay quiet before the
	// pending lines are emitted as a block.
	DefaultDebounce = 100 * time.Millisecond
)

// BoundaryDetector segments a stream of terminal lines into content
// blocks. Blocks end on blank-line runs, command completion, debounce
// timeout, or the scan-size cap. Blank runs inside fenced code blocks
// do not split.
type BoundaryDetector struct {
	scope          DetectionScope
	blankThreshold int
	maxScanLines   int
	debounce       time.Duration

	pending      []string
	pendingStart int
	blankRun     int
	lastLineAt   time.Time

	inCommand      bool
	currentCommand string

	altScreen bool

	inFence   bool
	fenceChar byte
}

// NewBoundaryDetector builds a detector with the default thresholds.
func NewBoundaryDetector(scope DetectionScope) *BoundaryDetector {
	return &BoundaryDetector{
		scope:          scope,
		blankThreshold: DefaultBlankLineThreshold,
		maxScanLines:   DefaultMaxScanLines,
		debounce:       DefaultDebounce,
	}
}

// SetBlankLineThreshold overrides the blank-run boundary length.
func (d *BoundaryDetector) SetBlankLineThreshold(n int) {
	if n > 0 {
		d.blankThreshold = n
	}
}

// SetMaxScanLines overrides the pending block size cap.
func (d *BoundaryDetector) SetMaxScanLines(n int) {
	if n > 0 {
		d.maxScanLines = n
	}
}

// SetDebounce overrides the quiet-period timeout.
func (d *BoundaryDetector) SetDebounce(dur time.Duration) {
	if dur > 0 {
		d.debounce = dur
	}
}

// Scope returns the detector's detection scope.
func (d *BoundaryDetector) Scope() DetectionScope { return d.scope }

// SetScope changes the scope and drops any pending lines, since they
// were gathered under the old rules.
func (d *BoundaryDetector) SetScope(scope DetectionScope) {
	d.scope = scope
	d.clearPending()
}

// PendingLineCount returns how many lines are buffered awaiting a
// boundary.
func (d *BoundaryDetector) PendingLineCount() int { return len(d.pending) }

// active reports whether lines should be gathered right now.
func (d *BoundaryDetector) active() bool {
	if d.altScreen || d.scope == ScopeManualOnly {
		return false
	}
	if d.scope == ScopeCommandOutput {
		return d.inCommand
	}
	return true
}

// ProcessLine feeds one grid line at the given absolute row. It returns
// a completed block when the line closes a boundary, nil otherwise.
func (d *BoundaryDetector) ProcessLine(line string, row int) *ContentBlock {
	if !d.active() {
		return nil
	}
	d.lastLineAt = time.Now()
	d.updateFenceState(line)

	if strings.TrimSpace(line) == "" {
		if len(d.pending) == 0 {
			return nil
		}
		d.blankRun++
		d.pending = append(d.pending, line)
		if d.blankRun >= d.blankThreshold && !d.inFence {
			return d.emit()
		}
		return nil
	}

	d.blankRun = 0
	if len(d.pending) == 0 {
		d.pendingStart = row
	}
	d.pending = append(d.pending, line)
	if len(d.pending) >= d.maxScanLines {
		return d.emit()
	}
	return nil
}

// OnCommandStart marks the beginning of a command's output. Lines still
// pending belong to the previous context and are emitted first.
func (d *BoundaryDetector) OnCommandStart(command string) *ContentBlock {
	block := d.emit()
	d.inCommand = true
	d.currentCommand = strings.TrimSpace(command)
	return block
}

// OnCommandEnd marks command completion and emits the pending output.
func (d *BoundaryDetector) OnCommandEnd() *ContentBlock {
	block := d.emit()
	d.inCommand = false
	d.currentCommand = ""
	return block
}

// OnAltScreenChange tracks alternate-screen transitions. Entering the
// alternate screen emits pending lines; nothing is gathered while a
// full-screen application owns the grid.
func (d *BoundaryDetector) OnAltScreenChange(active bool) *ContentBlock {
	var block *ContentBlock
	if active && !d.altScreen {
		block = d.emit()
	}
	d.altScreen = active
	d.inFence = false
	d.blankRun = 0
	return block
}

// OnProcessChange emits pending lines when the foreground process
// changes; output across a process switch never forms one block.
func (d *BoundaryDetector) OnProcessChange() *ContentBlock {
	return d.emit()
}

// CheckDebounce emits the pending block if output has been quiet for at
// least the debounce duration as of now.
func (d *BoundaryDetector) CheckDebounce(now time.Time) *ContentBlock {
	if len(d.pending) == 0 {
		return nil
	}
	if now.Sub(d.lastLineAt) < d.debounce {
		return nil
	}
	return d.emit()
}

// Flush force-emits whatever is pending. This is the only emission path
// in the manual-only scope.
func (d *BoundaryDetector) Flush() *ContentBlock { return d.emit() }

// Reset discards all detector state.
func (d *BoundaryDetector) Reset() {
	d.clearPending()
	d.inCommand = false
	d.currentCommand = ""
	d.altScreen = false
}

func (d *BoundaryDetector) clearPending() {
	d.pending = nil
	d.blankRun = 0
	d.inFence = false
}

// emit packages the pending lines, minus trailing blanks, as a block.
func (d *BoundaryDetector) emit() *ContentBlock {
	lines := d.pending
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	start := d.pendingStart
	command := d.currentCommand
	d.clearPending()
	if len(lines) == 0 {
		return nil
	}
	block := NewContentBlock(lines, command, start)
	return &block
}

// updateFenceState tracks ``` and ~~~ fences so blank lines inside a
// fenced code block do not terminate it.
func (d *BoundaryDetector) updateFenceState(line string) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return
	}
	fenceLen := 0
	for fenceLen < len(trimmed) && trimmed[fenceLen] == ch {
		fenceLen++
	}
	if fenceLen < 3 {
		return
	}
	rest := strings.TrimSpace(trimmed[fenceLen:])
	if d.inFence {
		// Only a bare fence of the same character closes.
		if ch == d.fenceChar && rest == "" {
			d.inFence = false
		}
		return
	}
	if rest == "" || isFenceInfoString(rest) {
		d.inFence = true
		d.fenceChar = ch
	}
}

func isFenceInfoString(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '+':
		default:
			return false
		}
	}
	return true
}
