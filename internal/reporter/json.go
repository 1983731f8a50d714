package reporter

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/ppiankov/codescan/internal/llm"
	"github.com/ppiankov/codescan/internal/scan"
)

type jsonReport struct {
	Root      string      `json:"root"`
	Model     string      `json:"model,omitempty"`
	StartedAt string      `json:"started_at"`
	Duration  string      `json:"duration"`
	Files     int         `json:"files"`
	Failed    int         `json:"failed"`
	Entries   []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Path      string      `json:"path"`
	Status    scan.Status `json:"status"`
	Text      string      `json:"text"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *scan.Report) error {
	out := jsonReport{
		Root:      report.Root,
		Model:     report.Model,
		StartedAt: report.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  report.Duration.String(),
		Files:     len(report.Entries),
		Failed:    report.Failed(),
		Entries:   make([]jsonEntry, 0, len(report.Entries)),
	}
	for _, e := range report.Entries {
		je := jsonEntry{Path: e.Path, Status: e.Status, Text: e.Text}
		if e.Err != nil {
			je.Error = e.Err.Error()
			je.ErrorKind = errorKind(e)
		}
		out.Entries = append(out.Entries, je)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// errorKind names the failure class of an error entry.
func errorKind(e scan.Entry) string {
	var llmErr *llm.Error
	if errors.As(e.Err, &llmErr) {
		return llmErr.Kind.String()
	}
	if errors.Is(e.Err, scan.ErrBinary) {
		return "binary"
	}
	return e.Status.String()
}
