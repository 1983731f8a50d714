package scan

import (
	"fmt"
	"strings"
)

// promptBuilder assembles prompts line by line.
type promptBuilder struct {
	buf strings.Builder
}

func newPrompt() *promptBuilder {
	return &promptBuilder{}
}

func (b *promptBuilder) line(s string) *promptBuilder {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
	return b
}

func (b *promptBuilder) blank() *promptBuilder {
	b.buf.WriteByte('\n')
	return b
}

func (b *promptBuilder) String() string {
	return b.buf.String()
}

// BuildPrompt embeds path and content into the fixed review template.
// Content is inserted verbatim; nothing in it is escaped, so a file can
// steer the model (prompt injection is a known limitation).
func BuildPrompt(path, content string) string {
	p := newPrompt()
	p.blank()
	p.line("You are a static code analysis tool like SonarQube.")
	p.line("Your task is to perform a detailed code scan on the following file:")
	p.line(fmt.Sprintf("Filename: %s", path))
	p.blank()
	p.line("Provide the following:")
	p.line("1. Code Smells & Maintainability Issues")
	p.line("2. Security Vulnerabilities (focus on OWASP Top 10)")
	p.line("3. Refactoring Recommendations")
	p.line("4. Missing or Poor Documentation/Comments")
	p.blank()
	p.line("Respond in a structured format using bullet points.")
	p.blank()
	p.line("Code:")
	p.line(`"""`)
	p.line(content)
	p.line(`"""`)
	return p.String()
}
