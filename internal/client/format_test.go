package client

import (
	"testing"

	"github.com/xdg/hostgate/internal/workspace"
)

func TestFormatListing(t *testing.T) {
	ten := int64(10)
	zero := int64(0)
	l := &workspace.Listing{
		Path: "/work",
		Entries: []workspace.Entry{
			{Name: "b.txt", Size: &ten},
			{Name: "Zeta", IsDirectory: true},
			{Name: "a", IsDirectory: true},
			{Name: "Empty.log", Size: &zero},
		},
	}

	want := "Directory: /work\n" +
		"Contents:\n" +
		"  [DIR] a\n" +
		"  [DIR] Zeta\n" +
		"  [FILE] b.txt 10 bytes\n" +
		"  [FILE] Empty.log 0 bytes\n"
	if got := FormatListing(l); got != want {
		t.Errorf("FormatListing() =\n%s\nwant\n%s", got, want)
	}

	if l.Entries[0].Name != "b.txt" {
		t.Error("FormatListing() reordered the listing's entries")
	}
}

func TestFormatListing_Empty(t *testing.T) {
	got := FormatListing(&workspace.Listing{Path: "/empty"})
	if want := "Directory: /empty\nContents:\n"; got != want {
		t.Errorf("FormatListing() = %q, want %q", got, want)
	}
}
