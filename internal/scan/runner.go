package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/codescan/internal/ignore"
)

// Completer sends one prompt to a chat-completion model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EventKind identifies a progress event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFinished
)

// Event is emitted around each file. Entry is set on EventFinished only.
type Event struct {
	Kind  EventKind
	Index int // 1-based discovery position
	Path  string
	Entry *Entry
}

// Options controls a scan run.
type Options struct {
	Extensions []string       // allow-list, matched as case-sensitive suffixes
	Ignore     ignore.Matcher // optional exclude patterns
	Model      string         // model name recorded in the report
	OnEvent    func(Event)    // optional progress callback, called synchronously
}

// Runner scans a tree one file at a time.
type Runner struct {
	model Completer
	opts  Options
}

// NewRunner creates a runner that sends prompts to model.
func NewRunner(model Completer, opts Options) *Runner {
	return &Runner{model: model, opts: opts}
}

// Run discovers, reads, prompts and records every matching file under root.
// Per-file read and model failures become error entries and never stop the
// run; only an invalid root is returned as an error.
func (r *Runner) Run(ctx context.Context, root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	report := &Report{
		Root:      root,
		Model:     r.opts.Model,
		StartedAt: time.Now(),
		Entries:   []Entry{},
	}

	slog.Info("starting scan", "root", root, "extensions", r.opts.Extensions, "model", r.opts.Model)

	i := 0
	for path := range Discover(root, r.opts.Extensions, r.opts.Ignore) {
		i++
		r.emit(Event{Kind: EventStarted, Index: i, Path: path})

		entry := r.scanFile(ctx, path)
		report.Entries = append(report.Entries, entry)

		r.emit(Event{Kind: EventFinished, Index: i, Path: path, Entry: &entry})
	}

	report.Duration = time.Since(report.StartedAt)
	slog.Info("scan finished", "files", len(report.Entries), "failed", report.Failed(), "duration", report.Duration)
	return report, nil
}

// scanFile produces exactly one entry for path.
func (r *Runner) scanFile(ctx context.Context, path string) Entry {
	content, err := ReadFile(path)
	if err != nil {
		cause := err
		var rErr *ReadError
		if errors.As(err, &rErr) {
			cause = rErr.Err
		}
		slog.Warn("read failed", "path", path, "error", cause)
		return Entry{
			Path:   path,
			Text:   fmt.Sprintf("Error reading %s: %v", path, cause),
			Status: StatusReadError,
			Err:    err,
		}
	}

	text, err := r.model.Complete(ctx, BuildPrompt(path, content))
	if err != nil {
		slog.Warn("analysis failed", "path", path, "error", err)
		return Entry{
			Path:   path,
			Text:   fmt.Sprintf("Error analyzing %s: %v", path, err),
			Status: StatusModelError,
			Err:    err,
		}
	}

	slog.Debug("analysis complete", "path", path, "bytes", len(text))
	return Entry{Path: path, Text: text, Status: StatusOK}
}

func (r *Runner) emit(ev Event) {
	if r.opts.OnEvent != nil {
		r.opts.OnEvent(ev)
	}
}
