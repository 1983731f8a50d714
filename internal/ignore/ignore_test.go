package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatcher_ZeroValue(t *testing.T) {
	var m Matcher
	if m.Match("anything.py", false) {
		t.Error("zero matcher must not match")
	}
}

func TestMatcher_Patterns(t *testing.T) {
	m := New([]string{"# comment", "", "vendor/", "*_gen.go", "/build", "!keep_gen.go"})
	if m.Len() != 4 {
		t.Fatalf("Len = %d, want 4", m.Len())
	}

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"vendor", true, true},
		{"src/vendor", true, true},
		{"api_gen.go", false, true},
		{"pkg/api_gen.go", false, true},
		{"keep_gen.go", false, false},
		{"build", true, true},
		{"src/build", true, false},
		{"main.go", false, false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.path, tt.isDir); got != tt.want {
			t.Errorf("Match(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestLoad_MergesFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("fixtures/\n*.min.js\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(root, []string{"node_modules/"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
	if !m.Match("web/app.min.js", false) {
		t.Error("expected pattern from file to match")
	}
	if !m.Match("node_modules", true) {
		t.Error("expected extra pattern to match")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	m, err := Load(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}
