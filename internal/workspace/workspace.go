// Package workspace lists host directories for gateway callers.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Errors returned by List.
var (
	ErrNotFound     = errors.New("directory not found")
	ErrNotDirectory = errors.New("not a directory")
)

// Entry describes one item in a directory listing. Size is nil for
// directories and the byte size for everything else.
type Entry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"is_directory"`
	Size        *int64 `json:"size"`
}

// Listing is a snapshot of a directory at the time it was read.
type Listing struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"contents"`
}

// Lister enumerates directories on the host.
type Lister struct {
	// Root is listed when no path is requested.
	Root string
}

// NewLister creates a Lister whose default directory is root.
func NewLister(root string) *Lister {
	return &Lister{Root: root}
}

// List reads the directory at path (or Root when path is empty) in one pass.
// Entries come back in whatever order the host filesystem yields; sorting
// for display is up to the caller (see SortForDisplay).
func (l *Lister) List(path string) (*Listing, error) {
	if path == "" {
		path = l.Root
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	dir, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = dir.Close() }()

	dirents, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			entries = append(entries, Entry{Name: d.Name(), IsDirectory: true})
			continue
		}
		fi, err := d.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", d.Name(), err)
		}
		size := fi.Size()
		entries = append(entries, Entry{Name: d.Name(), Size: &size})
	}

	return &Listing{Path: path, Entries: entries}, nil
}

// SortForDisplay orders entries directories first, then by case-insensitive
// name. Names equal ignoring case fall back to byte order so the result is
// deterministic.
func SortForDisplay(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		al, bl := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if al != bl {
			return al < bl
		}
		return a.Name < b.Name
	})
}
