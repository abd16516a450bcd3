package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func findEntry(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func TestLister_List(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "b.txt"), 10)

	listing, err := NewLister(root).List(root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if listing.Path != root {
		t.Errorf("Path = %q, want %q", listing.Path, root)
	}
	if len(listing.Entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(listing.Entries), listing.Entries)
	}

	a, ok := findEntry(listing.Entries, "a")
	if !ok {
		t.Fatal("entry a missing")
	}
	if !a.IsDirectory || a.Size != nil {
		t.Errorf("a = %+v, want directory with nil size", a)
	}

	b, ok := findEntry(listing.Entries, "b.txt")
	if !ok {
		t.Fatal("entry b.txt missing")
	}
	if b.IsDirectory || b.Size == nil || *b.Size != 10 {
		t.Errorf("b.txt = %+v, want file with size 10", b)
	}
}

func TestLister_DefaultsToRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "only.txt"), 3)

	listing, err := NewLister(root).List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listing.Path != root {
		t.Errorf("Path = %q, want root %q", listing.Path, root)
	}
	if len(listing.Entries) != 1 || listing.Entries[0].Name != "only.txt" {
		t.Errorf("unexpected entries %+v", listing.Entries)
	}
}

func TestLister_EmptyDirectory(t *testing.T) {
	root := t.TempDir()

	listing, err := NewLister(root).List(root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listing.Entries == nil || len(listing.Entries) != 0 {
		t.Errorf("Entries = %#v, want empty non-nil slice", listing.Entries)
	}
}

func TestLister_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, 1)

	l := NewLister(root)

	if _, err := l.List(filepath.Join(root, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dir error = %v, want ErrNotFound", err)
	}
	if _, err := l.List(file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file path error = %v, want ErrNotDirectory", err)
	}
}

func TestSortForDisplay(t *testing.T) {
	size := int64(1)
	entries := []Entry{
		{Name: "b.txt", Size: &size},
		{Name: "Zeta", IsDirectory: true},
		{Name: "a.txt", Size: &size},
		{Name: "alpha", IsDirectory: true},
		{Name: "B.md", Size: &size},
		{Name: "a", IsDirectory: true},
	}

	SortForDisplay(entries)

	want := []string{"a", "alpha", "Zeta", "a.txt", "B.md", "b.txt"}
	for i, name := range want {
		if entries[i].Name != name {
			got := make([]string, len(entries))
			for j, e := range entries {
				got[j] = e.Name
			}
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortForDisplay_DirectoryBeforeFile(t *testing.T) {
	size := int64(10)
	entries := []Entry{
		{Name: "b.txt", Size: &size},
		{Name: "a", IsDirectory: true},
	}
	SortForDisplay(entries)
	if entries[0].Name != "a" || entries[1].Name != "b.txt" {
		t.Errorf("got %s, %s; want a, b.txt", entries[0].Name, entries[1].Name)
	}
}
