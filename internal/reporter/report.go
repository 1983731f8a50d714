package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/codescan/internal/scan"
)

// Format selects the report file encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat converts a flag value to Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSARIF:
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown report format %q (use text, json, or sarif)", s)
	}
}

// DefaultOutput returns the report path used when none is configured.
func DefaultOutput(f Format) string {
	switch f {
	case FormatJSON:
		return "codescan_report.json"
	case FormatSARIF:
		return "codescan_report.sarif"
	default:
		return "codescan_report.txt"
	}
}

// Write encodes report to w in the given format.
func Write(w io.Writer, report *scan.Report, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatSARIF:
		return WriteSARIF(w, report)
	default:
		return WriteText(w, report)
	}
}

// WriteReport writes report to path, replacing any existing file.
func WriteReport(report *scan.Report, path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(file, report, f); err != nil {
		_ = file.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}
