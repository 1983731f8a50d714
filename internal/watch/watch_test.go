package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/codescan/internal/ignore"
)

const (
	testDebounce = 100 * time.Millisecond
	waitTimeout  = 5 * time.Second
	quietPeriod  = 300 * time.Millisecond
)

type harness struct {
	root    string
	changes chan struct{}
	cancel  context.CancelFunc
	done    chan error
}

func startWatcher(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{root: root, changes: make(chan struct{}, 16), done: make(chan error, 1)}

	cfg := Config{
		Root:       root,
		Extensions: []string{".py"},
		Debounce:   testDebounce,
		OnChange:   func(context.Context) { h.changes <- struct{}{} },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- w.Run(ctx) }()

	select {
	case <-w.ready:
	case err := <-h.done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(waitTimeout):
		t.Fatal("watcher not ready")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitTimeout):
			t.Error("watcher did not stop")
		}
	})
	return h
}

func (h *harness) write(t *testing.T, rel string) {
	t.Helper()
	path := filepath.Join(h.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("print('x')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) expectChange(t *testing.T) {
	t.Helper()
	select {
	case <-h.changes:
	case <-time.After(waitTimeout):
		t.Fatal("expected a rescan")
	}
}

func (h *harness) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case <-h.changes:
		t.Fatal("unexpected rescan")
	case <-time.After(quietPeriod):
	}
}

func TestWatch_AllowedFileTriggers(t *testing.T) {
	h := startWatcher(t, nil)
	h.write(t, "a.py")
	h.expectChange(t)
}

func TestWatch_OtherExtensionsIgnored(t *testing.T) {
	h := startWatcher(t, nil)
	h.write(t, "notes.txt")
	h.expectQuiet(t)
}

func TestWatch_Debounce(t *testing.T) {
	h := startWatcher(t, nil)
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		h.write(t, name)
	}
	h.expectChange(t)
	h.expectQuiet(t)
}

func TestWatch_SkipPath(t *testing.T) {
	var skipped string
	h := startWatcher(t, func(c *Config) {
		c.Extensions = []string{".py", ".txt"}
		skipped = filepath.Join(c.Root, "report.txt")
		c.Skip = []string{skipped}
	})
	h.write(t, filepath.Base(skipped))
	h.expectQuiet(t)
}

func TestWatch_IgnoredPattern(t *testing.T) {
	h := startWatcher(t, func(c *Config) {
		c.Ignore = ignore.New([]string{"gen_*.py"})
	})
	h.write(t, "gen_models.py")
	h.expectQuiet(t)
}

func TestWatch_NewDirectory(t *testing.T) {
	h := startWatcher(t, nil)
	if err := os.Mkdir(filepath.Join(h.root, "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	// allow the new directory to be added before writing into it
	time.Sleep(100 * time.Millisecond)
	h.write(t, filepath.Join("pkg", "mod.py"))
	h.expectChange(t)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	h := startWatcher(t, nil)
	h.cancel()
	select {
	case err := <-h.done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
		h.done <- err
	case <-time.After(waitTimeout):
		t.Fatal("watcher did not stop")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{OnChange: func(context.Context) {}}); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := New(Config{Root: "."}); err == nil {
		t.Error("expected error for missing handler")
	}
	w, err := New(Config{Root: ".", OnChange: func(context.Context) {}})
	if err != nil {
		t.Fatal(err)
	}
	if w.cfg.Debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.cfg.Debounce, DefaultDebounce)
	}
}

func TestWatch_InitialScanSeesEditsDuringIt(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	calls := 0
	h := startWatcher(t, func(cfg *Config) {
		cfg.InitialScan = true
		next := cfg.OnChange
		cfg.OnChange = func(ctx context.Context) {
			calls++
			if calls == 1 {
				started <- struct{}{}
				<-release
			}
			next(ctx)
		}
	})

	select {
	case <-started:
	case <-time.After(waitTimeout):
		t.Fatal("initial scan did not start")
	}
	h.write(t, "a.py")
	time.Sleep(2 * testDebounce)
	close(release)

	h.expectChange(t)
	h.expectChange(t)
	h.expectQuiet(t)
}
