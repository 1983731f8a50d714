package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/codescan/internal/scan"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// TextReporter writes human-readable run output to a terminal or log.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables ANSI codes.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// PrintHeader writes the initial banner.
func (r *TextReporter) PrintHeader(root, model string) {
	fmt.Fprintf(r.w, "codescan: %s (model: %s)\n\n", root, model)
}

// PrintSummary writes the final summary line.
func (r *TextReporter) PrintSummary(report *scan.Report, outputPath string) {
	failed := report.Failed()
	fmt.Fprintf(r.w, "\n%s--- Summary ---%s\n", r.c(colorCyan), r.c(colorReset))
	fmt.Fprintf(r.w, "Files: %d  ", len(report.Entries))
	fmt.Fprintf(r.w, "%sAnalyzed: %d%s  ", r.c(colorGreen), len(report.Entries)-failed, r.c(colorReset))
	if failed > 0 {
		fmt.Fprintf(r.w, "%sFailed: %d%s  ", r.c(colorRed), failed, r.c(colorReset))
	}
	fmt.Fprintf(r.w, "Duration: %s\n", report.Duration.Truncate(time.Second))
	if len(report.Entries) == 0 {
		fmt.Fprintf(r.w, "%sNo matching files found.%s\n", r.c(colorYellow), r.c(colorReset))
	}
	fmt.Fprintf(r.w, "Report saved to: %s\n", outputPath)
}

func (r *TextReporter) c(code string) string {
	if !r.color {
		return ""
	}
	return code
}
