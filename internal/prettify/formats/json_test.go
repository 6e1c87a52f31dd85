package formats

import (
	"strings"
	"testing"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

func testConfig() *prettify.RendererConfig {
	return &prettify.RendererConfig{
		TerminalWidth: 80,
		Theme:         prettify.DefaultTheme(),
	}
}

func TestJSONDetectorMatchesObject(t *testing.T) {
	d := NewJSONDetector()
	block := prettify.NewContentBlock([]string{
		"{",
		`  "name": "widget",`,
		`  "count": 3`,
		"}",
	}, "", 0)
	result := d.Detect(&block)
	if result == nil {
		t.Fatal("JSON object not detected")
	}
	if result.FormatID != "json" {
		t.Fatalf("FormatID = %q", result.FormatID)
	}
	if result.Confidence < 0.6 {
		t.Fatalf("confidence = %v, want >= 0.6", result.Confidence)
	}
}

func TestJSONDetectorCommandContext(t *testing.T) {
	d := NewJSONDetector()
	// A lone key/value line is not enough without context.
	lines := []string{`"status": "ok"`}
	bare := prettify.NewContentBlock(lines, "", 0)
	if result := d.Detect(&bare); result != nil {
		t.Fatal("single weak signal should not match")
	}
	curled := prettify.NewContentBlock(lines, "curl -s https://api.test/health", 0)
	if result := d.Detect(&curled); result == nil {
		t.Fatal("curl context should push the score past the threshold")
	}
}

func TestJSONDetectorRejectsProse(t *testing.T) {
	d := NewJSONDetector()
	block := prettify.NewContentBlock([]string{
		"Compiling project...",
		"Build succeeded in 2.3s",
	}, "", 0)
	if result := d.Detect(&block); result != nil {
		t.Fatalf("prose detected as JSON: %+v", result)
	}
}

func TestJSONRendererNormalizes(t *testing.T) {
	r := JSONRenderer{}
	block := prettify.NewContentBlock([]string{`{"a":1,"b":"two"}`}, "", 0)
	rc, err := r.Render(&block, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if rc.FormatBadge != "json" {
		t.Errorf("badge = %q", rc.FormatBadge)
	}
	if len(rc.Lines) < 4 {
		t.Fatalf("expected multi-line normalized output, got %d lines", len(rc.Lines))
	}
	text := make([]string, len(rc.Lines))
	for i, l := range rc.Lines {
		text[i] = l.Text()
	}
	joined := strings.Join(text, "\n")
	if !strings.Contains(joined, `"a": 1`) {
		t.Fatalf("normalized output missing key: %q", joined)
	}
}

func TestJSONRendererStylesKeys(t *testing.T) {
	r := JSONRenderer{}
	theme := prettify.DefaultTheme()
	block := prettify.NewContentBlock([]string{`{"key":"value"}`}, "", 0)
	rc, err := r.Render(&block, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, line := range rc.Lines {
		for _, seg := range line.Segments {
			if seg.Text == `"key"` && seg.Style.FG == theme.Key {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("key segment not styled with the key color")
	}
}

func TestJSONRendererRejectsInvalid(t *testing.T) {
	r := JSONRenderer{}
	block := prettify.NewContentBlock([]string{`{"broken":`}, "", 0)
	if _, err := r.Render(&block, testConfig()); err == nil {
		t.Fatal("invalid JSON must be a render error")
	}
}
