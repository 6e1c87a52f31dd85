package prettify

import (
	"log/slog"
	"sort"
	"time"
)

// MaxActiveBlocks caps how many prettified blocks the pipeline keeps.
// Older blocks (lowest start row) are evicted first.
const MaxActiveBlocks = 128

// PrettifiedBlock is one detected, possibly rendered block the pipeline
// is tracking. BlockID is monotonic for the pipeline's lifetime.
type PrettifiedBlock struct {
	BlockID   uint64
	Detection DetectionResult
	Buffer    *DualViewBuffer
}

// RowRange returns the grid rows the block covers.
func (p *PrettifiedBlock) RowRange() RowRange { return p.Buffer.RowRange() }

// Options configure a Pipeline.
type Options struct {
	Scope               DetectionScope
	ConfidenceThreshold float64
	BlankLineThreshold  int
	MaxScanLines        int
	Debounce            time.Duration
	CacheSize           int
	TerminalWidth       int
	Theme               *Theme
	ClaudeCode          ClaudeCodeOptions
	Logger              *slog.Logger
}

// DefaultOptions mirror the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{
		Scope:               ScopeAll,
		ConfidenceThreshold: 0.6,
		BlankLineThreshold:  DefaultBlankLineThreshold,
		MaxScanLines:        DefaultMaxScanLines,
		Debounce:            DefaultDebounce,
		CacheSize:           DefaultCacheSize,
		TerminalWidth:       80,
		ClaudeCode:          DefaultClaudeCodeOptions(),
	}
}

// Pipeline orchestrates boundary detection, format detection, cached
// rendering, and the active block list. It is single-threaded; callers
// drive it from the terminal's update loop.
type Pipeline struct {
	boundary *BoundaryDetector
	registry *Registry
	cache    *RenderCache
	claude   *ClaudeCode
	log      *slog.Logger

	active     []*PrettifiedBlock
	suppressed []RowRange

	baseEnabled     bool
	sessionOverride *bool
	nextBlockID     uint64
	rendererCfg     RendererConfig
}

// NewPipeline builds a pipeline. Detectors and renderers are installed
// on the returned Registry.
func NewPipeline(opts Options) *Pipeline {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = 0.6
	}
	if opts.TerminalWidth <= 0 {
		opts.TerminalWidth = 80
	}
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	boundary := NewBoundaryDetector(opts.Scope)
	boundary.SetBlankLineThreshold(opts.BlankLineThreshold)
	boundary.SetMaxScanLines(opts.MaxScanLines)
	boundary.SetDebounce(opts.Debounce)

	return &Pipeline{
		boundary:    boundary,
		registry:    NewRegistry(opts.ConfidenceThreshold),
		cache:       NewRenderCache(opts.CacheSize),
		claude:      NewClaudeCode(opts.ClaudeCode),
		log:         logger,
		baseEnabled: true,
		rendererCfg: RendererConfig{
			TerminalWidth: opts.TerminalWidth,
			Theme:         theme,
		},
	}
}

// Registry exposes the format registry for detector/renderer setup.
func (p *Pipeline) Registry() *Registry { return p.registry }

// ClaudeCode exposes the session integration.
func (p *Pipeline) ClaudeCode() *ClaudeCode { return p.claude }

// Boundary exposes the boundary detector.
func (p *Pipeline) Boundary() *BoundaryDetector { return p.boundary }

// SetEnabled sets the base configured enabled flag and clears any
// session override. Explicit triggers keep working while disabled.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.baseEnabled = enabled
	p.sessionOverride = nil
}

// ToggleGlobal flips a session-scoped enable override layered over the
// base flag. The base configuration is untouched.
func (p *Pipeline) ToggleGlobal() {
	next := !p.Enabled()
	p.sessionOverride = &next
}

// Enabled resolves the session override if set, else the base flag.
func (p *Pipeline) Enabled() bool {
	if p.sessionOverride != nil {
		return *p.sessionOverride
	}
	return p.baseEnabled
}

// Scope returns the boundary detector's scope.
func (p *Pipeline) Scope() DetectionScope { return p.boundary.Scope() }

// ActiveBlocks returns the tracked blocks ordered by start row.
func (p *Pipeline) ActiveBlocks() []*PrettifiedBlock { return p.active }

// RenderCacheStats returns the render cache counters.
func (p *Pipeline) RenderCacheStats() CacheStats { return p.cache.Stats() }

// ProcessOutput feeds one terminal line into the pipeline. Completed
// blocks flow into detection automatically.
func (p *Pipeline) ProcessOutput(line string, row int) {
	if !p.Enabled() {
		return
	}
	p.claude.ObserveLine(line, row)
	if block := p.boundary.ProcessLine(line, row); block != nil {
		p.handleBlock(block, SourceHeuristicScan)
	}
}

// SubmitCommandOutput hands the pipeline a complete command's output in
// one call, discarding any stale partial accumulation first. Empty
// output is a no-op.
func (p *Pipeline) SubmitCommandOutput(lines []string, command string, startRow int) {
	if !p.Enabled() || len(lines) == 0 {
		return
	}
	p.boundary.Reset()
	block := NewContentBlock(lines, command, startRow)
	p.handleBlock(&block, SourceHeuristicScan)
}

// OnCommandStart forwards a command-start marker to the boundary
// detector and processes any block it closes.
func (p *Pipeline) OnCommandStart(command string) {
	p.dispatch(p.boundary.OnCommandStart(command))
}

// OnCommandEnd forwards command completion.
func (p *Pipeline) OnCommandEnd() {
	p.dispatch(p.boundary.OnCommandEnd())
}

// OnAltScreenChange forwards alternate-screen transitions.
func (p *Pipeline) OnAltScreenChange(active bool) {
	p.dispatch(p.boundary.OnAltScreenChange(active))
}

// OnProcessChange forwards a foreground process change and re-evaluates
// Claude Code session detection.
func (p *Pipeline) OnProcessChange(env func(string) string, processName string) {
	p.claude.OnProcessChange(env, processName)
	p.dispatch(p.boundary.OnProcessChange())
}

// CheckDebounce emits a pending block if output has gone quiet.
func (p *Pipeline) CheckDebounce(now time.Time) {
	p.dispatch(p.boundary.CheckDebounce(now))
}

// Flush force-emits whatever the boundary detector is holding.
func (p *Pipeline) Flush() {
	p.dispatch(p.boundary.Flush())
}

// ResetBoundary discards the boundary detector's buffered state.
func (p *Pipeline) ResetBoundary() { p.boundary.Reset() }

func (p *Pipeline) dispatch(block *ContentBlock) {
	if block == nil || !p.Enabled() {
		return
	}
	p.handleBlock(block, SourceHeuristicScan)
}

// TriggerPrettify force-renders content under the given format id on
// explicit user request. Detection, the enabled flag, suppression, and
// dedup/staleness checks are all bypassed; a directed override always
// wins. It reports whether a block was created.
func (p *Pipeline) TriggerPrettify(formatID string, lines []string, command string, startRow int) bool {
	if len(lines) == 0 {
		return false
	}
	block := NewContentBlock(lines, command, startRow)
	result := &DetectionResult{
		FormatID:   formatID,
		Confidence: 1.0,
		Source:     SourceTriggerInvoked,
	}
	p.insertDetected(&block, result)
	return true
}

// handleBlock runs the full detect/dedup/render path for one block.
func (p *Pipeline) handleBlock(block *ContentBlock, source DetectionSource) {
	blockRange := RowRange{Start: block.StartRow, End: block.EndRow}
	if p.isSuppressed(blockRange) {
		p.log.Debug("block suppressed", "start", block.StartRow, "end", block.EndRow)
		return
	}

	result := p.registry.Detect(block)
	if result == nil {
		// Content at these rows changed to something undetectable;
		// a stale overlapping render must not keep covering it.
		p.removeStaleOverlap(block)
		return
	}
	result.Source = source
	p.insertDetected(block, result)
}

// removeStaleOverlap drops the first active block overlapping the new
// content whose fingerprint differs.
func (p *Pipeline) removeStaleOverlap(block *ContentBlock) {
	blockRange := RowRange{Start: block.StartRow, End: block.EndRow}
	fp := FingerprintBlock(block)
	for i, existing := range p.active {
		if existing.RowRange().Overlaps(blockRange) && existing.Buffer.Fingerprint() != fp {
			p.log.Debug("removing stale block", "block_id", existing.BlockID)
			p.active = append(p.active[:i], p.active[i+1:]...)
			return
		}
	}
}

// insertDetected renders a detected block and installs it in the active
// list, replacing overlapping blocks with different content.
func (p *Pipeline) insertDetected(block *ContentBlock, result *DetectionResult) {
	blockRange := RowRange{Start: block.StartRow, End: block.EndRow}
	fp := FingerprintBlock(block)

	if result.Source == SourceHeuristicScan {
		for _, existing := range p.active {
			if existing.RowRange().Overlaps(blockRange) && existing.Buffer.Fingerprint() == fp {
				// Same content re-emitted over the same rows; the
				// existing block already covers it.
				return
			}
		}
		kept := p.active[:0]
		for _, existing := range p.active {
			if existing.RowRange().Overlaps(blockRange) {
				p.log.Debug("replacing overlapping block", "block_id", existing.BlockID)
				continue
			}
			kept = append(kept, existing)
		}
		p.active = kept
	}

	buffer := NewDualViewBuffer(*block)
	p.renderInto(buffer, result.FormatID)

	pb := &PrettifiedBlock{
		BlockID:   p.allocBlockID(),
		Detection: *result,
		Buffer:    buffer,
	}
	p.insertSorted(pb)
	p.evictExcess()
	p.log.Debug("block prettified",
		"block_id", pb.BlockID,
		"format", result.FormatID,
		"confidence", result.Confidence,
		"source", result.Source.String())
}

// allocBlockID hands out ids starting at zero; ids never repeat or
// decrease for the pipeline's lifetime.
func (p *Pipeline) allocBlockID() uint64 {
	id := p.nextBlockID
	p.nextBlockID++
	return id
}

// renderInto produces the styled view through the render cache. Render
// failures leave the buffer raw; the block is still tracked.
func (p *Pipeline) renderInto(buffer *DualViewBuffer, formatID string) {
	width := p.rendererCfg.TerminalWidth
	renderer, ok := p.registry.Renderer(formatID)
	if !ok {
		p.log.Warn("no renderer registered", "format", formatID)
		return
	}
	content, err := p.cache.GetOrRender(buffer.Fingerprint(), width, func() (*RenderedContent, error) {
		return renderer.Render(buffer.Source(), &p.rendererCfg)
	})
	if err != nil {
		p.log.Warn("render failed", "format", formatID, "error", err)
		return
	}
	buffer.SetRendered(content, width)
}

// insertSorted places the block keeping the active list ordered by
// ascending start row.
func (p *Pipeline) insertSorted(pb *PrettifiedBlock) {
	i := sort.Search(len(p.active), func(i int) bool {
		return p.active[i].Buffer.Source().StartRow > pb.Buffer.Source().StartRow
	})
	p.active = append(p.active, nil)
	copy(p.active[i+1:], p.active[i:])
	p.active[i] = pb
}

// evictExcess enforces the active block cap and sweeps bookkeeping that
// references rows older than the oldest surviving block.
func (p *Pipeline) evictExcess() {
	for len(p.active) > MaxActiveBlocks {
		p.log.Debug("evicting block", "block_id", p.active[0].BlockID)
		p.active = p.active[1:]
	}
	if len(p.active) == 0 {
		return
	}
	oldest := p.active[0].Buffer.Source().StartRow
	kept := p.suppressed[:0]
	for _, r := range p.suppressed {
		if r.End > oldest {
			kept = append(kept, r)
		}
	}
	p.suppressed = kept
	p.claude.CleanupStaleEntries(oldest)
}

// BlockAtRow returns the block covering the given row, if any. The
// active list is ordered by start row, so a binary search finds the
// last block starting at or before the row; that block either covers
// the row or nothing does.
func (p *Pipeline) BlockAtRow(row int) (*PrettifiedBlock, bool) {
	i := sort.Search(len(p.active), func(i int) bool {
		return p.active[i].Buffer.Source().StartRow > row
	})
	if i == 0 {
		return nil, false
	}
	if candidate := p.active[i-1]; candidate.RowRange().ContainsRow(row) {
		return candidate, true
	}
	return nil, false
}

// Suppress excludes a row range from future detection. Duplicate ranges
// are recorded once.
func (p *Pipeline) Suppress(r RowRange) {
	for _, existing := range p.suppressed {
		if existing == r {
			return
		}
	}
	p.suppressed = append(p.suppressed, r)
}

// isSuppressed reports whether a suppression range fully contains r.
func (p *Pipeline) isSuppressed(r RowRange) bool {
	for _, s := range p.suppressed {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// SuppressedRanges returns the recorded suppression ranges.
func (p *Pipeline) SuppressedRanges() []RowRange { return p.suppressed }

// ToggleBlock flips the raw/rendered view of exactly the addressed
// block. Unknown ids have no effect.
func (p *Pipeline) ToggleBlock(blockID uint64) bool {
	for _, pb := range p.active {
		if pb.BlockID == blockID {
			pb.Buffer.ToggleMode()
			return true
		}
	}
	return false
}

// ToggleBlockAt flips the view of the block covering row and reports
// whether one was found.
func (p *Pipeline) ToggleBlockAt(row int) bool {
	pb, ok := p.BlockAtRow(row)
	if !ok {
		return false
	}
	pb.Buffer.ToggleMode()
	return true
}

// ClearBlocks drops every active block and suppression range, for grid
// resets such as a clear-screen or compact-mode transition.
func (p *Pipeline) ClearBlocks() {
	p.active = nil
	p.suppressed = nil
}

// SetTerminalWidth updates the render width for future renders. Cached
// entries are untouched until ReRenderIfNeeded runs.
func (p *Pipeline) SetTerminalWidth(width int) {
	if width > 0 {
		p.rendererCfg.TerminalWidth = width
	}
}

// SetCellDims records the terminal cell size in pixels for renderers
// that size width-sensitive inline content.
func (p *Pipeline) SetCellDims(widthPx, heightPx float64) {
	p.rendererCfg.CellWidthPx = widthPx
	p.rendererCfg.CellHeightPx = heightPx
}

// ReRenderIfNeeded re-renders, through the cache, every active block
// whose stored render was produced at a different width than the
// current one.
func (p *Pipeline) ReRenderIfNeeded() {
	width := p.rendererCfg.TerminalWidth
	for _, pb := range p.active {
		if _, ok := pb.Buffer.Rendered(width); ok {
			continue
		}
		pb.Buffer.InvalidateRender()
		p.renderInto(pb.Buffer, pb.Detection.FormatID)
	}
}

// SetTheme swaps the theme and clears the render cache; stale renders
// are replaced on the next ReRenderIfNeeded.
func (p *Pipeline) SetTheme(theme *Theme) {
	if theme == nil {
		return
	}
	p.rendererCfg.Theme = theme
	p.cache.Clear()
	for _, pb := range p.active {
		pb.Buffer.InvalidateRender()
	}
}

// OnClaudeCodeExpand handles a collapsed region being expanded at the
// marker row. The expanded rows are re-read from overlapping active
// blocks and replayed through detection without deduplication.
func (p *Pipeline) OnClaudeCodeExpand(markerRow int, expanded RowRange) {
	region, replay := p.claude.OnExpand(markerRow)
	if region == nil || !replay || region.Prettified {
		return
	}
	var lines []string
	start := expanded.Start
	for _, pb := range p.active {
		if !pb.RowRange().Overlaps(expanded) {
			continue
		}
		if len(lines) == 0 {
			start = pb.Buffer.Source().StartRow
		}
		lines = append(lines, pb.Buffer.Source().Lines...)
	}
	if len(lines) == 0 {
		return
	}
	block := NewContentBlock(lines, "", start)
	result := p.registry.Detect(&block)
	if result == nil {
		return
	}
	result.Source = SourceExpansionReplay
	p.insertDetected(&block, result)
	p.claude.MarkPrettified(region.ID)
	p.claude.SetPreview(region.ID, BuildPreview(&block, result.FormatID))
}
