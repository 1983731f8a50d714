package llm

import "regexp"

// secretPatterns match credential values that providers echo back in error
// messages, e.g. "Incorrect API key provided: sk-abc...".
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-]{20,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9\-_*]{20,}`),
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.]{20,}`),
	regexp.MustCompile(`\b[a-f0-9]{32,}\b`),
}

const redactPlaceholder = "[REDACTED]"

// redactSecrets returns msg with credential-like tokens replaced and the
// number of replacements made.
func redactSecrets(msg string) (string, int) {
	count := 0
	for _, re := range secretPatterns {
		matches := re.FindAllStringIndex(msg, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		msg = re.ReplaceAllString(msg, redactPlaceholder)
	}
	return msg, count
}
