package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/codescan/internal/llm"
	"github.com/ppiankov/codescan/internal/scan"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestProgress_Events(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false)
	p.now = fakeClock(250 * time.Millisecond)

	ok := scan.Entry{Path: "a.py", Text: "fine", Status: scan.StatusOK}
	bad := scan.Entry{
		Path:   "b.js",
		Status: scan.StatusModelError,
		Err:    &llm.Error{Kind: llm.KindAuth, StatusCode: 401, Message: "bad key"},
	}

	p.Event(scan.Event{Kind: scan.EventStarted, Index: 1, Path: "a.py"})
	p.Event(scan.Event{Kind: scan.EventFinished, Index: 1, Path: "a.py", Entry: &ok})
	p.Event(scan.Event{Kind: scan.EventStarted, Index: 2, Path: "b.js"})
	p.Event(scan.Event{Kind: scan.EventFinished, Index: 2, Path: "b.js", Entry: &bad})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "[1] scanning a.py" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "✓") || !strings.Contains(lines[1], "250ms") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[3], "✗") || !strings.Contains(lines[3], "model_error") || !strings.Contains(lines[3], "bad key") {
		t.Errorf("line 3 = %q", lines[3])
	}

	done, failed := p.Counts()
	if done != 2 || failed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", done, failed)
	}
}

func TestProgress_Color(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, true)
	p.Event(scan.Event{Kind: scan.EventStarted, Index: 1, Path: "a.py"})
	if !strings.Contains(buf.String(), colorDim) {
		t.Errorf("expected ANSI codes, got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("ééééé", 3); got != "ééé..." {
		t.Errorf("truncate runes = %q", got)
	}
}
