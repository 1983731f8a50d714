// Package ignore matches relative paths against gitignore-style exclude patterns.
package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the per-tree exclude file read from the scan root.
const FileName = ".codescanignore"

// Matcher holds compiled patterns. The zero value matches nothing.
type Matcher struct {
	m gitignore.Matcher
	n int
}

// New compiles patterns. Blank lines and comments are skipped.
func New(patterns []string) Matcher {
	var ps []gitignore.Pattern
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}
	if len(ps) == 0 {
		return Matcher{}
	}
	return Matcher{m: gitignore.NewMatcher(ps), n: len(ps)}
}

// Load combines extra patterns with those in root/.codescanignore.
// A missing file is not an error.
func Load(root string, extra []string) (Matcher, error) {
	patterns := append([]string(nil), extra...)
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Matcher{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	if err == nil {
		patterns = append(patterns, strings.Split(string(data), "\n")...)
	}
	return New(patterns), nil
}

// Len returns the number of compiled patterns.
func (m Matcher) Len() int { return m.n }

// Match reports whether the slash- or OS-separated relative path is excluded.
func (m Matcher) Match(rel string, isDir bool) bool {
	if m.m == nil {
		return false
	}
	return m.m.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}
