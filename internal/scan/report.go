package scan

import (
	"encoding/json"
	"time"
)

// Status is the outcome of scanning one file.
type Status int

const (
	StatusOK Status = iota
	StatusReadError
	StatusModelError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusReadError:
		return "read_error"
	case StatusModelError:
		return "model_error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Entry is the result for one discovered file. Text holds the model's raw
// answer, or for failed files a message naming the path and the error.
type Entry struct {
	Path   string `json:"path"`
	Text   string `json:"text"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// Failed reports whether the entry records an error.
func (e *Entry) Failed() bool { return e.Status != StatusOK }

// Report is the ordered output of one run.
type Report struct {
	Root      string        `json:"root"`
	Model     string        `json:"model,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Entries   []Entry       `json:"entries"`
}

// Failed returns the number of entries that record an error.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Entries {
		if r.Entries[i].Failed() {
			n++
		}
	}
	return n
}
