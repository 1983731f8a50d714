package reporter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ppiankov/codescan/internal/scan"
)

const maxErrLen = 120

// Progress prints one line per scanned file as scan events arrive.
// It is safe for use from the runner's event callback.
type Progress struct {
	w       io.Writer
	color   bool
	now     func() time.Time
	started time.Time
	done    int
	failed  int
	mu      sync.Mutex
}

// NewProgress creates a plain progress printer.
func NewProgress(w io.Writer, color bool) *Progress {
	return &Progress{w: w, color: color, now: time.Now}
}

// Event handles a scan event. It matches scan.Options.OnEvent.
func (p *Progress) Event(ev scan.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case scan.EventStarted:
		p.started = p.now()
		fmt.Fprintf(p.w, "%s[%d] scanning %s%s\n", p.c(colorDim), ev.Index, ev.Path, p.c(colorReset))
	case scan.EventFinished:
		if ev.Entry == nil {
			return
		}
		p.done++
		elapsed := p.now().Sub(p.started).Truncate(time.Millisecond)
		if ev.Entry.Failed() {
			p.failed++
			fmt.Fprintf(p.w, "  %s✗ %-11s %s%s\n", p.c(colorRed), ev.Entry.Status, truncate(errText(ev.Entry), maxErrLen), p.c(colorReset))
			return
		}
		fmt.Fprintf(p.w, "  %s✓ %-11s %s%s\n", p.c(colorGreen), "done", elapsed, p.c(colorReset))
	}
}

// Counts returns how many files finished and how many of them failed.
func (p *Progress) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed
}

func (p *Progress) c(code string) string {
	if !p.color {
		return ""
	}
	return code
}

func errText(e *scan.Entry) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Text
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
