package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/ppiankov/codescan/internal/scan"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"

	ruleAnalysis = "codescan/analysis"
	ruleError    = "codescan/error"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// WriteSARIF writes a SARIF v2.1.0 log with one file-level result per entry:
// "note" for model analyses, "error" for files that could not be analyzed.
// The model's text is carried as-is; no findings are parsed out of it.
func WriteSARIF(w io.Writer, report *scan.Report) error {
	results := make([]sarifResult, 0, len(report.Entries))
	for _, e := range report.Entries {
		rule, level := ruleAnalysis, "note"
		if e.Failed() {
			rule, level = ruleError, "error"
		}
		results = append(results, sarifResult{
			RuleID:  rule,
			Level:   level,
			Message: sarifMessage{Text: e.Text},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: artifactURI(report.Root, e.Path)},
				},
			}},
		})
	}

	sarif := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name: "codescan",
					Rules: []sarifRule{
						{ID: ruleAnalysis, ShortDescription: sarifMessage{Text: "Model review of a source file"}},
						{ID: ruleError, ShortDescription: sarifMessage{Text: "Source file could not be analyzed"}},
					},
				},
			},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarif)
}

// artifactURI returns path relative to root with forward slashes,
// falling back to the path as given.
func artifactURI(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
