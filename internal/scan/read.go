package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// binarySniff is how many decoded bytes are checked for NUL.
const binarySniff = 8000

// ErrBinary is wrapped by ReadError when a file does not look like text.
var ErrBinary = errors.New("file appears to be binary")

// ReadError reports a file that could not be read as text.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// ReadFile returns the full content of path as text. A UTF-8 or UTF-16 byte
// order mark selects the decoding; anything else is decoded as UTF-8 with
// invalid sequences replaced by U+FFFD. Content with a NUL byte near the start
// is rejected as binary.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, dec))
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	if looksBinary(data) {
		return "", &ReadError{Path: path, Err: ErrBinary}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

func looksBinary(b []byte) bool {
	if len(b) > binarySniff {
		b = b[:binarySniff]
	}
	return bytes.IndexByte(b, 0) >= 0
}
