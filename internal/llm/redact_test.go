package llm

import (
	"strings"
	"testing"
)

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{
			name:  "openai key",
			in:    "Incorrect API key provided: sk-proj-abcdefghijklmnopqrstuvwxyz. You can find your key at ...",
			want:  "Incorrect API key provided: [REDACTED]. You can find your key at ...",
			count: 1,
		},
		{
			name:  "masked key",
			in:    "Incorrect API key provided: sk-abc12***************************wxyz.",
			want:  "Incorrect API key provided: [REDACTED].",
			count: 1,
		},
		{
			name:  "azure hex key",
			in:    "Access denied due to invalid subscription key 0123456789abcdef0123456789abcdef.",
			want:  "Access denied due to invalid subscription key [REDACTED].",
			count: 1,
		},
		{
			name:  "nothing to redact",
			in:    "Rate limit reached for requests",
			want:  "Rate limit reached for requests",
			count: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := redactSecrets(tt.in)
			if got != tt.want {
				t.Errorf("redactSecrets = %q, want %q", got, tt.want)
			}
			if n != tt.count {
				t.Errorf("count = %d, want %d", n, tt.count)
			}
		})
	}
}

func TestRedactSecrets_NoSkAntDoubleCount(t *testing.T) {
	got, _ := redactSecrets("key sk-ant-REDACTED")
	if strings.Contains(got, "sk-") {
		t.Errorf("key not redacted: %q", got)
	}
}
