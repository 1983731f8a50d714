package scan

import (
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/codescan/internal/ignore"
)

// HasAllowedExtension reports whether name ends with one of exts.
// The match is a case-sensitive suffix match on the base name.
func HasAllowedExtension(name string, exts []string) bool {
	base := filepath.Base(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// Discover lazily yields every regular file under root whose name matches the
// allow-list and that ign does not exclude. Paths are joined onto root and
// produced in WalkDir (lexical) order. The sequence walks the tree once per
// range loop; stopping the loop stops the walk.
func Discover(root string, exts []string, ign ignore.Matcher) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable entries below the root are skipped, not fatal
				slog.Warn("skip unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if path != root && ign.Len() > 0 {
				rel, relErr := filepath.Rel(root, path)
				if relErr == nil && ign.Match(rel, d.IsDir()) {
					slog.Debug("excluded", "path", path)
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			if d.IsDir() {
				return nil
			}
			if !HasAllowedExtension(d.Name(), exts) {
				return nil
			}
			if !d.Type().IsRegular() && !isFileLink(path, d) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// isFileLink reports whether d is a symlink that should be scanned as a file.
// Links to directories are never followed. A dangling link counts as a file
// so that reading it produces an error entry.
func isFileLink(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().IsRegular()
}
