package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ppiankov/codescan/internal/scan"
)

func readSARIF(t *testing.T, report *scan.Report) sarifReport {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, report); err != nil {
		t.Fatal(err)
	}
	var sarif sarifReport
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	return sarif
}

func TestWriteSARIF_ValidStructure(t *testing.T) {
	sarif := readSARIF(t, testReport())

	if sarif.Version != "2.1.0" {
		t.Errorf("version = %q", sarif.Version)
	}
	if sarif.Schema != sarifSchema {
		t.Errorf("schema = %q", sarif.Schema)
	}
	if len(sarif.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(sarif.Runs))
	}
	if sarif.Runs[0].Tool.Driver.Name != "codescan" {
		t.Errorf("driver = %q", sarif.Runs[0].Tool.Driver.Name)
	}
}

func TestWriteSARIF_OneResultPerEntry(t *testing.T) {
	results := readSARIF(t, testReport()).Runs[0].Results
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	ok := results[0]
	if ok.Level != "note" || ok.RuleID != ruleAnalysis {
		t.Errorf("ok result = %s/%s, want note/%s", ok.Level, ok.RuleID, ruleAnalysis)
	}
	if ok.Message.Text != "looks fine" {
		t.Errorf("message = %q", ok.Message.Text)
	}
	if uri := ok.Locations[0].PhysicalLocation.ArtifactLocation.URI; uri != "a.py" {
		t.Errorf("uri = %q, want a.py", uri)
	}

	failed := results[1]
	if failed.Level != "error" || failed.RuleID != ruleError {
		t.Errorf("failed result = %s/%s, want error/%s", failed.Level, failed.RuleID, ruleError)
	}
}

func TestWriteSARIF_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, &scan.Report{Root: "/src"}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"results": []`)) {
		t.Errorf("expected empty results array, got:\n%s", buf.String())
	}
}

func TestArtifactURI(t *testing.T) {
	tests := []struct {
		root, path, want string
	}{
		{"/src", "/src/pkg/a.go", "pkg/a.go"},
		{"/src", "/other/b.go", "/other/b.go"},
		{"src", "src/c.py", "c.py"},
	}
	for _, tt := range tests {
		if got := artifactURI(tt.root, tt.path); got != tt.want {
			t.Errorf("artifactURI(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
		}
	}
}
