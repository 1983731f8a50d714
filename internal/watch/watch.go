// Package watch re-runs a scan when source files under a tree change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/codescan/internal/ignore"
	"github.com/ppiankov/codescan/internal/scan"
)

// DefaultDebounce is the quiet period after the last change before a rescan.
const DefaultDebounce = 500 * time.Millisecond

// Config holds watcher configuration.
type Config struct {
	Root       string
	Extensions []string
	Ignore     ignore.Matcher
	Skip       []string      // files whose events never trigger a rescan, e.g. the report
	Debounce   time.Duration // defaults to DefaultDebounce
	OnChange   func(ctx context.Context)

	// InitialScan queues one OnChange call as soon as the tree is watched,
	// so edits made while it runs are picked up by the next one.
	InitialScan bool
}

// Watcher watches a directory tree and calls OnChange after changes settle.
// OnChange calls never overlap.
type Watcher struct {
	cfg     Config
	root    string
	skip    map[string]bool
	trigger chan struct{}
	ready   chan struct{}
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("watch root is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	skip := make(map[string]bool, len(cfg.Skip))
	for _, p := range cfg.Skip {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	return &Watcher{
		cfg:     cfg,
		root:    root,
		skip:    skip,
		trigger: make(chan struct{}, 1),
		ready:   make(chan struct{}),
	}, nil
}

// Run watches until ctx is cancelled. It waits for a running rescan to
// return before exiting.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	n, err := w.addTree(watcher, w.root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	slog.Info("watching for changes", "root", w.root, "dirs", n, "debounce", w.cfg.Debounce)
	if w.cfg.InitialScan {
		w.trigger <- struct{}{}
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rescanLoop(loopCtx)
	}()

	var mu sync.Mutex
	var pending *time.Timer
	schedule := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(w.cfg.Debounce, func() {
			slog.Debug("change settled", "path", reason)
			select {
			case w.trigger <- struct{}{}:
			default:
				// a rescan is already queued
			}
		})
	}

	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			mu.Unlock()
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.ignored(event.Name, true) {
						continue
					}
					if _, err := w.addTree(watcher, event.Name); err != nil {
						slog.Warn("watch new directory", "path", event.Name, "error", err)
					}
					if w.hasRelevantFiles(event.Name) {
						schedule(event.Name)
					}
					continue
				}
			}

			if w.relevant(event.Name) {
				slog.Debug("file changed", "path", event.Name, "op", event.Op.String())
				schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) rescanLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			slog.Info("rescanning", "root", w.root)
			w.cfg.OnChange(ctx)
		}
	}
}

// addTree adds dir and every non-ignored subdirectory to the watcher.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			slog.Warn("skipping unreadable directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if path == dir {
				return err
			}
			slog.Warn("watch directory", "path", path, "error", err)
			return nil
		}
		n++
		return nil
	})
	return n, err
}

func (w *Watcher) hasRelevantFiles(dir string) bool {
	found := errors.New("found")
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.relevant(path) {
			return found
		}
		return nil
	})
	return errors.Is(err, found)
}

// relevant reports whether a change to the file at path warrants a rescan.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if w.skip[abs] {
		return false
	}
	if !scan.HasAllowedExtension(abs, w.cfg.Extensions) {
		return false
	}
	return !w.ignored(abs, false)
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return false
	}
	return w.cfg.Ignore.Match(filepath.ToSlash(rel), isDir)
}
