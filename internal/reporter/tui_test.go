package reporter

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/codescan/internal/scan"
)

func update(t *testing.T, m TUIModel, msg tea.Msg) (TUIModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	tm, ok := next.(TUIModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return tm, cmd
}

func TestTUIModel_Events(t *testing.T) {
	m := NewTUIModel("/src", "gpt-test", nil)
	m.now = fakeClock(time.Second)

	ok := scan.Entry{Path: "/src/a.py", Status: scan.StatusOK, Text: "fine"}
	bad := scan.Entry{Path: "/src/b.js", Status: scan.StatusReadError, Text: "Error reading", Err: scan.ErrBinary}

	m, _ = update(t, m, EventMsg{Kind: scan.EventStarted, Index: 1, Path: "/src/a.py"})
	if !strings.Contains(m.View(), "[1] /src/a.py") {
		t.Errorf("current file missing from view:\n%s", m.View())
	}

	m, _ = update(t, m, EventMsg{Kind: scan.EventFinished, Index: 1, Path: "/src/a.py", Entry: &ok})
	m, _ = update(t, m, EventMsg{Kind: scan.EventStarted, Index: 2, Path: "/src/b.js"})
	m, _ = update(t, m, EventMsg{Kind: scan.EventFinished, Index: 2, Path: "/src/b.js", Entry: &bad})

	done, failed := m.Counts()
	if done != 2 || failed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", done, failed)
	}

	view := m.View()
	for _, want := range []string{"codescan: /src", "gpt-test", "1 done", "1 failed", "a.py", "b.js", "appears to be binary"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Index(view, "b.js") > strings.Index(view, "a.py") {
		t.Error("expected most recent entry first")
	}
}

func TestTUIModel_RecentCapped(t *testing.T) {
	m := NewTUIModel("/src", "", nil)
	m.maxRecent = 2
	for i, p := range []string{"a.py", "b.py", "c.py"} {
		e := scan.Entry{Path: p, Status: scan.StatusOK}
		m, _ = update(t, m, EventMsg{Kind: scan.EventStarted, Index: i + 1, Path: p})
		m, _ = update(t, m, EventMsg{Kind: scan.EventFinished, Index: i + 1, Path: p, Entry: &e})
	}
	if len(m.recent) != 2 || m.recent[0].path != "b.py" {
		t.Errorf("recent = %+v", m.recent)
	}
}

func TestTUIModel_Keys(t *testing.T) {
	cancelled := false
	m := NewTUIModel("/src", "", func() { cancelled = true })

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on q")
	}
	if cancelled {
		t.Error("q should not cancel the scan")
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !cancelled {
		t.Error("ctrl+c should cancel the scan and quit")
	}
}

func TestTUIModel_Done(t *testing.T) {
	m := NewTUIModel("/src", "", nil)
	m, cmd := update(t, m, DoneMsg{})
	if cmd == nil {
		t.Error("expected quit command")
	}
	if !strings.Contains(m.View(), "scan finished") {
		t.Errorf("view:\n%s", m.View())
	}
}
