package prettify

import "testing"

func envWith(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDetectSession(t *testing.T) {
	noEnv := envWith(nil)
	if !DetectSession(envWith(map[string]string{"CLAUDE_CODE": "1"}), "zsh") {
		t.Error("CLAUDE_CODE env var should detect a session")
	}
	if !DetectSession(noEnv, "claude") {
		t.Error("process name should detect a session")
	}
	if !DetectSession(noEnv, "Claude-Helper") {
		t.Error("process name match must be case-insensitive")
	}
	if DetectSession(noEnv, "bash") {
		t.Error("plain shell should not detect a session")
	}
}

func TestOnProcessChangeRespectsAutoDetect(t *testing.T) {
	opts := DefaultClaudeCodeOptions()
	opts.AutoDetect = false
	cc := NewClaudeCode(opts)
	cc.OnProcessChange(envWith(nil), "claude")
	if cc.SessionActive() {
		t.Fatal("auto-detect off must leave the session flag alone")
	}

	cc = NewClaudeCode(DefaultClaudeCodeOptions())
	cc.OnProcessChange(envWith(nil), "claude")
	if !cc.SessionActive() {
		t.Fatal("auto-detect should flag the session")
	}
	cc.OnProcessChange(envWith(nil), "vim")
	if cc.SessionActive() {
		t.Fatal("leaving the session should clear the flag")
	}
}

func TestIsCollapseMarker(t *testing.T) {
	if !IsCollapseMarker("  … +87 lines (ctrl+o to expand)") {
		t.Error("expand hint not recognized")
	}
	if !IsCollapseMarker("(CTRL+O TO EXPAND)") {
		t.Error("marker match must be case-insensitive")
	}
	if IsCollapseMarker("press ctrl+o maybe") {
		t.Error("partial text must not match")
	}
}

func TestObserveLineDedupesByRow(t *testing.T) {
	cc := NewClaudeCode(DefaultClaudeCodeOptions())
	cc.SetSessionActive(true)
	id1, ok := cc.ObserveLine("(ctrl+o to expand)", 42)
	if !ok {
		t.Fatal("marker not observed")
	}
	id2, ok := cc.ObserveLine("(ctrl+o to expand)", 42)
	if !ok || id2 != id1 {
		t.Fatal("re-observing the same row must return the same region")
	}
	if len(cc.Regions()) != 1 {
		t.Fatalf("regions = %d, want 1", len(cc.Regions()))
	}
}

func TestObserveLineRequiresSession(t *testing.T) {
	cc := NewClaudeCode(DefaultClaudeCodeOptions())
	if _, ok := cc.ObserveLine("(ctrl+o to expand)", 1); ok {
		t.Fatal("markers outside a session must be ignored")
	}
}

func TestExpandCollapseStateMachine(t *testing.T) {
	cc := NewClaudeCode(DefaultClaudeCodeOptions())
	cc.SetSessionActive(true)
	cc.ObserveLine("(ctrl+o to expand)", 7)

	region, replay := cc.OnExpand(7)
	if region == nil || !replay {
		t.Fatal("expand should find the region and request replay")
	}
	if region.State != StateExpanded {
		t.Fatal("region should be expanded")
	}
	cc.OnCollapse(7)
	if r, _ := cc.RegionAt(7); r.State != StateCollapsed {
		t.Fatal("region should be collapsed again")
	}
	if r, _ := cc.OnExpand(99); r != nil {
		t.Fatal("expand on an unknown row should find nothing")
	}
}

func TestExpandHonorsAutoRenderOption(t *testing.T) {
	opts := DefaultClaudeCodeOptions()
	opts.AutoRenderOnExpand = false
	cc := NewClaudeCode(opts)
	cc.SetSessionActive(true)
	cc.ObserveLine("(ctrl+o to expand)", 3)
	if _, replay := cc.OnExpand(3); replay {
		t.Fatal("replay must be off when auto_render_on_expand is disabled")
	}
}

func TestBuildPreview(t *testing.T) {
	block := NewContentBlock([]string{"intro", "# Release Notes", "body"}, "", 0)
	got := BuildPreview(&block, "markdown")
	want := "[markdown] · Release Notes · 3 lines"
	if got != want {
		t.Fatalf("preview = %q, want %q", got, want)
	}

	plain := NewContentBlock([]string{"a", "b"}, "", 0)
	if got := BuildPreview(&plain, ""); got != "2 lines" {
		t.Fatalf("preview without badge/header = %q", got)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	cc := NewClaudeCode(DefaultClaudeCodeOptions())
	cc.SetSessionActive(true)
	cc.ObserveLine("(ctrl+o to expand)", 5)
	cc.ObserveLine("(ctrl+o to expand)", 50)
	cc.CleanupStaleEntries(10)
	regions := cc.Regions()
	if len(regions) != 1 || regions[0].MarkerRow != 50 {
		t.Fatalf("cleanup kept %v, want only row 50", regions)
	}
}

func TestMarkPrettified(t *testing.T) {
	cc := NewClaudeCode(DefaultClaudeCodeOptions())
	cc.SetSessionActive(true)
	id, _ := cc.ObserveLine("(ctrl+o to expand)", 2)
	cc.MarkPrettified(id)
	if r, _ := cc.RegionAt(2); !r.Prettified {
		t.Fatal("region not marked prettified")
	}
}
