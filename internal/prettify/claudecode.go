package prettify

import (
	"fmt"
	"strings"
)

// collapseMarker is the hint Claude Code prints after a collapsed tool
// result. Matching is case-insensitive.
const collapseMarker = "(ctrl+o to expand)"

// ClaudeCodeOptions control the Claude Code session integration.
type ClaudeCodeOptions struct {
	AutoDetect         bool
	RenderMarkdown     bool
	RenderDiffs        bool
	AutoRenderOnExpand bool
}

// DefaultClaudeCodeOptions enables every integration feature.
func DefaultClaudeCodeOptions() ClaudeCodeOptions {
	return ClaudeCodeOptions{
		AutoDetect:         true,
		RenderMarkdown:     true,
		RenderDiffs:        true,
		AutoRenderOnExpand: true,
	}
}

// CollapseState tracks whether a collapsed region has been expanded.
type CollapseState int

const (
	StateCollapsed CollapseState = iota
	StateExpanded
)

// CollapsedRegion is one "ctrl+o to expand" marker the integration has
// seen, keyed by the marker's grid row.
type CollapsedRegion struct {
	ID         uint64
	MarkerRow  int
	State      CollapseState
	Preview    string
	Prettified bool
}

// ClaudeCode tracks an interactive Claude Code session: whether one is
// running, and which output regions are collapsed behind expand
// markers. Expanded regions are replayed through detection by the
// pipeline.
type ClaudeCode struct {
	opts    ClaudeCodeOptions
	session bool
	regions []CollapsedRegion
	nextID  uint64
}

// NewClaudeCode builds the integration with the given options.
func NewClaudeCode(opts ClaudeCodeOptions) *ClaudeCode {
	return &ClaudeCode{opts: opts, nextID: 1}
}

// Options returns the active option set.
func (c *ClaudeCode) Options() ClaudeCodeOptions { return c.opts }

// DetectSession decides whether a Claude Code session is running from
// the environment and the foreground process name. env looks up an
// environment variable, as os.Getenv does.
func DetectSession(env func(string) string, processName string) bool {
	if env("CLAUDE_CODE") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(processName), "claude")
}

// OnProcessChange re-evaluates session detection against the new
// foreground process. Detection is skipped when auto-detect is off.
func (c *ClaudeCode) OnProcessChange(env func(string) string, processName string) {
	if !c.opts.AutoDetect {
		return
	}
	c.session = DetectSession(env, processName)
}

// SetSessionActive forces the session flag, bypassing auto-detection.
func (c *ClaudeCode) SetSessionActive(active bool) { c.session = active }

// SessionActive reports whether a Claude Code session is believed to be
// running.
func (c *ClaudeCode) SessionActive() bool { return c.session }

// IsCollapseMarker reports whether a line carries the expand hint.
func IsCollapseMarker(line string) bool {
	return strings.Contains(strings.ToLower(line), collapseMarker)
}

// ObserveLine registers a collapse marker at the given row. Re-observing
// a known row is a no-op so redraws do not duplicate regions. It returns
// the region's id and whether the line was a marker.
func (c *ClaudeCode) ObserveLine(line string, row int) (uint64, bool) {
	if !c.session || !IsCollapseMarker(line) {
		return 0, false
	}
	for i := range c.regions {
		if c.regions[i].MarkerRow == row {
			return c.regions[i].ID, true
		}
	}
	id := c.nextID
	c.nextID++
	c.regions = append(c.regions, CollapsedRegion{
		ID:        id,
		MarkerRow: row,
		State:     StateCollapsed,
	})
	return id, true
}

// RegionAt returns the region whose marker sits on the given row.
func (c *ClaudeCode) RegionAt(row int) (*CollapsedRegion, bool) {
	for i := range c.regions {
		if c.regions[i].MarkerRow == row {
			return &c.regions[i], true
		}
	}
	return nil, false
}

// Regions returns all tracked regions.
func (c *ClaudeCode) Regions() []CollapsedRegion { return c.regions }

// OnExpand marks the region at row expanded and reports whether the
// pipeline should replay its content through detection.
func (c *ClaudeCode) OnExpand(row int) (*CollapsedRegion, bool) {
	region, ok := c.RegionAt(row)
	if !ok {
		return nil, false
	}
	region.State = StateExpanded
	return region, c.opts.AutoRenderOnExpand
}

// OnCollapse marks the region at row collapsed again.
func (c *ClaudeCode) OnCollapse(row int) {
	if region, ok := c.RegionAt(row); ok {
		region.State = StateCollapsed
	}
}

// MarkPrettified records that the region's expanded content has been
// rendered, so a repeat expand does not replay it.
func (c *ClaudeCode) MarkPrettified(id uint64) {
	for i := range c.regions {
		if c.regions[i].ID == id {
			c.regions[i].Prettified = true
			return
		}
	}
}

// SetPreview attaches a collapsed-state summary to a region.
func (c *ClaudeCode) SetPreview(id uint64, preview string) {
	for i := range c.regions {
		if c.regions[i].ID == id {
			c.regions[i].Preview = preview
			return
		}
	}
}

// BuildPreview summarizes a block for collapsed display: format badge,
// the first markdown header if one exists, and the line count.
func BuildPreview(block *ContentBlock, badge string) string {
	parts := []string{}
	if badge != "" {
		parts = append(parts, "["+badge+"]")
	}
	for _, line := range block.Lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			parts = append(parts, strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
			break
		}
	}
	parts = append(parts, fmt.Sprintf("%d lines", block.LineCount()))
	return strings.Join(parts, " · ")
}

// CleanupStaleEntries drops regions whose marker row scrolled above
// minRow and is no longer addressable.
func (c *ClaudeCode) CleanupStaleEntries(minRow int) {
	kept := c.regions[:0]
	for _, r := range c.regions {
		if r.MarkerRow >= minRow {
			kept = append(kept, r)
		}
	}
	c.regions = kept
}

// Reset forgets all regions and the session flag.
func (c *ClaudeCode) Reset() {
	c.regions = nil
	c.session = false
}
