package reporter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/codescan/internal/scan"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const defaultRecent = 10

type tickMsg time.Time

// EventMsg wraps a scan event for delivery through tea.Program.Send.
type EventMsg scan.Event

// DoneMsg tells the view that the run finished.
type DoneMsg struct{}

type recentEntry struct {
	path   string
	status scan.Status
	detail string
	took   time.Duration
}

// TUIModel is the Bubbletea model for the live scan view.
type TUIModel struct {
	root      string
	model     string
	cancelRun func() // called on ctrl+c to cancel the run context

	current   string
	startedAt time.Time
	index     int
	done      int
	failed    int
	recent    []recentEntry
	maxRecent int

	frame    int
	width    int
	height   int
	finished bool
	now      func() time.Time
}

// NewTUIModel creates a new TUI model. cancelRun may be nil.
func NewTUIModel(root, model string, cancelRun func()) TUIModel {
	return TUIModel{
		root:      root,
		model:     model,
		cancelRun: cancelRun,
		maxRecent: defaultRecent,
		now:       time.Now,
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			return m, tea.Quit
		case "q":
			// leaves the view; the scan keeps going
			return m, tea.Quit
		}

	case EventMsg:
		m.apply(scan.Event(msg))

	case DoneMsg:
		m.finished = true
		m.current = ""
		return m, tea.Quit

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if avail := m.height - 6; avail > 3 {
			m.maxRecent = avail
		}
	}

	return m, nil
}

func (m *TUIModel) apply(ev scan.Event) {
	switch ev.Kind {
	case scan.EventStarted:
		m.current = ev.Path
		m.index = ev.Index
		m.startedAt = m.now()
	case scan.EventFinished:
		if ev.Entry == nil {
			return
		}
		m.done++
		r := recentEntry{path: ev.Path, status: ev.Entry.Status, took: m.now().Sub(m.startedAt)}
		if ev.Entry.Failed() {
			m.failed++
			r.detail = errText(ev.Entry)
		}
		m.recent = append(m.recent, r)
		if len(m.recent) > m.maxRecent {
			m.recent = m.recent[len(m.recent)-m.maxRecent:]
		}
		m.current = ""
	}
}

// Counts returns the finished and failed file counts seen so far.
func (m TUIModel) Counts() (done, failed int) {
	return m.done, m.failed
}

// View implements tea.Model.
func (m TUIModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("codescan: %s", m.root)
	if m.model != "" {
		header += fmt.Sprintf(" (model: %s)", m.model)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.progressLine())
	b.WriteString("\n\n")

	switch {
	case m.current != "":
		spinner := spinnerChars[m.frame%len(spinnerChars)]
		elapsed := m.now().Sub(m.startedAt).Truncate(time.Second)
		b.WriteString(runStyle.Render(fmt.Sprintf("  %s [%d] %s %s", spinner, m.index, m.current, elapsed)))
	case m.finished:
		b.WriteString(doneStyle.Render("  scan finished"))
	default:
		b.WriteString(dimStyle.Render("  waiting for files..."))
	}
	b.WriteString("\n")

	for i := len(m.recent) - 1; i >= 0; i-- {
		b.WriteString(m.fmtRecent(m.recent[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  q: close view  ctrl+c: cancel scan"))
	return b.String()
}

func (m TUIModel) fmtRecent(r recentEntry) string {
	name := filepath.Base(r.path)
	if r.status != scan.StatusOK {
		return failedStyle.Render(fmt.Sprintf("  ✗ %-11s %-30s %s", r.status, name, truncate(r.detail, 60)))
	}
	return doneStyle.Render(fmt.Sprintf("  ✓ %-11s %-30s %s", "done", name, r.took.Truncate(time.Second)))
}

func (m TUIModel) progressLine() string {
	parts := []string{doneStyle.Render(fmt.Sprintf("%d done", m.done-m.failed))}
	if m.failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	return fmt.Sprintf("  %s", strings.Join(parts, "  "))
}
