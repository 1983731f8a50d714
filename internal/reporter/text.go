package reporter

import (
	"bufio"
	"io"
	"strings"

	"github.com/ppiankov/codescan/internal/scan"
)

var separator = strings.Repeat("=", 40)

// WriteText writes one block per entry:
//
//	<blank line>
//	========================================
//	Analysis for: <path>
//	========================================
//	<text>
//
// The output depends only on the entries, so identical entries give
// byte-identical files.
func WriteText(w io.Writer, report *scan.Report) error {
	bw := bufio.NewWriter(w)
	for _, e := range report.Entries {
		bw.WriteString("\n")
		bw.WriteString(separator)
		bw.WriteString("\nAnalysis for: ")
		bw.WriteString(e.Path)
		bw.WriteString("\n")
		bw.WriteString(separator)
		bw.WriteString("\n")
		bw.WriteString(e.Text)
		bw.WriteString("\n")
	}
	return bw.Flush()
}
