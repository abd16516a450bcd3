// Package hostfs reads and writes files on the host on behalf of gateway
// callers.
//
// Access is not checked against the command policy; the gateway's
// authentication is the only gate. That is a weaker boundary than command
// execution and is intentional. Paths are used as given, anywhere on the
// host filesystem, and concurrent access to one path is not serialized.
package hostfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

// ErrNotFound is returned by ReadFile when the path does not exist.
var ErrNotFound = errors.New("file not found")

// ErrNotText is returned by ReadFile when the content is not valid UTF-8 and
// so cannot be carried in a JSON string unchanged.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// FileMode is the permission used when WriteFile creates a file.
const FileMode fs.FileMode = 0o644

// FS performs whole-file reads and writes on host paths.
type FS struct{}

// New returns a host filesystem accessor.
func New() *FS {
	return &FS{}
}

// ReadFile returns the entire content of path as text. The whole file is
// held in memory. Binary content fails with ErrNotText.
func (f *FS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotText, path)
	}
	return string(data), nil
}

// WriteFile creates or truncates path and writes content to it. Parent
// directories are not created. Returns the number of bytes written.
func (f *FS) WriteFile(path, content string) (int, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}

	n, err := file.WriteString(content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}
