package formats

import (
	"testing"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

var sampleLog = []string{
	"2026-08-31T10:15:02Z INFO server started port=8080",
	"2026-08-31T10:15:03Z WARN slow handler path=/api",
	"2026-08-31T10:15:04Z ERROR upstream timeout host=db-1",
}

func TestLogDetectorMatchesTimestampedLevels(t *testing.T) {
	d := NewLogDetector()
	block := prettify.NewContentBlock(sampleLog, "", 0)
	if result := d.Detect(&block); result == nil {
		t.Fatal("log output not detected")
	}
}

func TestLogDetectorNeedsTwoRules(t *testing.T) {
	d := NewLogDetector()
	// One ERROR word in prose is not a log.
	block := prettify.NewContentBlock([]string{"the word ERROR appears here"}, "", 0)
	if result := d.Detect(&block); result != nil {
		t.Fatalf("prose detected as log: %+v", result)
	}
}

func TestLogRendererLevelColors(t *testing.T) {
	r := LogRenderer{}
	theme := prettify.DefaultTheme()
	block := prettify.NewContentBlock(sampleLog, "", 0)
	rc, err := r.Render(&block, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Each line: timestamp segment, level segment, message segment.
	if got := rc.Lines[0].Segments[0].Style.FG; got != theme.Dim {
		t.Errorf("timestamp FG = %q, want dim", got)
	}
	levelSeg := func(i int) prettify.TextSegment { return rc.Lines[i].Segments[1] }
	if levelSeg(0).Style.FG != theme.Accent {
		t.Error("INFO should use accent")
	}
	if levelSeg(1).Style.FG != theme.Warn {
		t.Error("WARN should use warn color")
	}
	if levelSeg(2).Style.FG != theme.Error || !levelSeg(2).Style.Bold {
		t.Error("ERROR should be bold error color")
	}
}

func TestLogRendererPreservesText(t *testing.T) {
	r := LogRenderer{}
	block := prettify.NewContentBlock(sampleLog, "", 0)
	rc, _ := r.Render(&block, testConfig())
	for i, line := range rc.Lines {
		if line.Text() != sampleLog[i] {
			t.Fatalf("line %d text changed: %q", i, line.Text())
		}
	}
}
