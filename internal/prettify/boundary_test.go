package prettify

import (
	"fmt"
	"testing"
	"time"
)

func feedLines(d *BoundaryDetector, start int, lines ...string) []*ContentBlock {
	var blocks []*ContentBlock
	for i, l := range lines {
		if b := d.ProcessLine(l, start+i); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func TestBoundaryBlankRunEmits(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	blocks := feedLines(d, 0, "line one", "line two", "", "")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.LineCount() != 2 {
		t.Fatalf("trailing blanks not trimmed: %v", b.Lines)
	}
	if b.StartRow != 0 || b.EndRow != 2 {
		t.Fatalf("rows = [%d,%d), want [0,2)", b.StartRow, b.EndRow)
	}
}

func TestBoundarySingleBlankDoesNotEmit(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	if blocks := feedLines(d, 0, "text", "", "more"); len(blocks) != 0 {
		t.Fatalf("single blank emitted a block: %v", blocks)
	}
	if d.PendingLineCount() != 3 {
		t.Fatalf("pending = %d, want 3", d.PendingLineCount())
	}
}

func TestBoundaryFenceSuppressesBlankSplit(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	blocks := feedLines(d, 0,
		"```go",
		"func main() {",
		"",
		"",
		"}",
		"```",
		"",
		"")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 (blank run inside fence must not split)", len(blocks))
	}
	if blocks[0].LineCount() != 6 {
		t.Fatalf("fenced block lines = %d, want 6", blocks[0].LineCount())
	}
}

func TestBoundaryTildeFence(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	blocks := feedLines(d, 0, "~~~python", "x = 1", "", "", "~~~", "", "")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
}

func TestBoundaryFenceIgnoresProseBackticks(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	// A fence-like line with prose after the language tag is not a fence.
	blocks := feedLines(d, 0, "``` this is just text with spaces", "more", "", "")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
}

func TestBoundaryMaxScanLines(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	d.SetMaxScanLines(10)
	var blocks []*ContentBlock
	for i := 0; i < 25; i++ {
		if b := d.ProcessLine(fmt.Sprintf("line %d", i), i); b != nil {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d forced emissions, want 2", len(blocks))
	}
	if blocks[0].LineCount() != 10 {
		t.Fatalf("forced block lines = %d, want 10", blocks[0].LineCount())
	}
}

func TestBoundaryCommandScope(t *testing.T) {
	d := NewBoundaryDetector(ScopeCommandOutput)
	if blocks := feedLines(d, 0, "outside command"); len(blocks) != 0 || d.PendingLineCount() != 0 {
		t.Fatal("command_output scope must ignore lines outside commands")
	}
	d.OnCommandStart("cat data.json")
	feedLines(d, 1, "{", "}")
	block := d.OnCommandEnd()
	if block == nil {
		t.Fatal("command end should emit pending output")
	}
	if block.PrecedingCommand != "cat data.json" {
		t.Fatalf("PrecedingCommand = %q", block.PrecedingCommand)
	}
}

func TestBoundaryManualOnlyScope(t *testing.T) {
	d := NewBoundaryDetector(ScopeManualOnly)
	feedLines(d, 0, "a", "b", "", "")
	if d.PendingLineCount() != 0 {
		t.Fatal("manual_only scope must not gather lines")
	}
	if b := d.Flush(); b != nil {
		t.Fatal("flush with nothing pending should return nil")
	}
}

func TestBoundaryFlush(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	feedLines(d, 3, "partial")
	b := d.Flush()
	if b == nil || b.StartRow != 3 || b.LineCount() != 1 {
		t.Fatalf("flush = %+v", b)
	}
	if d.PendingLineCount() != 0 {
		t.Fatal("flush must clear pending state")
	}
}

func TestBoundaryDebounce(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	d.SetDebounce(50 * time.Millisecond)
	feedLines(d, 0, "quiet output")
	if b := d.CheckDebounce(time.Now()); b != nil {
		t.Fatal("debounce fired before the quiet period elapsed")
	}
	if b := d.CheckDebounce(time.Now().Add(100 * time.Millisecond)); b == nil {
		t.Fatal("debounce did not fire after the quiet period")
	}
}

func TestBoundaryAltScreen(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	feedLines(d, 0, "before vim")
	block := d.OnAltScreenChange(true)
	if block == nil || block.Lines[0] != "before vim" {
		t.Fatal("entering alt screen should emit pending lines")
	}
	if blocks := feedLines(d, 1, "vim interior"); len(blocks) != 0 || d.PendingLineCount() != 0 {
		t.Fatal("alt screen content must not be gathered")
	}
	d.OnAltScreenChange(false)
	feedLines(d, 2, "after vim", "", "")
	// Gathering resumes after leaving the alternate screen.
}

func TestBoundaryProcessChange(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	feedLines(d, 0, "from old process")
	if b := d.OnProcessChange(); b == nil {
		t.Fatal("process change should emit pending lines")
	}
}

func TestBoundarySetScopeDropsPending(t *testing.T) {
	d := NewBoundaryDetector(ScopeAll)
	feedLines(d, 0, "stale")
	d.SetScope(ScopeCommandOutput)
	if d.PendingLineCount() != 0 {
		t.Fatal("scope change must drop pending lines")
	}
}
