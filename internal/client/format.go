package client

import (
	"fmt"
	"strings"

	"github.com/xdg/hostgate/internal/workspace"
)

// FormatListing renders a listing for the terminal: directories first, then
// files, each group in case-insensitive name order. The listing's entries
// are not reordered.
func FormatListing(l *workspace.Listing) string {
	entries := make([]workspace.Entry, len(l.Entries))
	copy(entries, l.Entries)
	workspace.SortForDisplay(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n", l.Path)
	b.WriteString("Contents:\n")
	for _, e := range entries {
		if e.IsDirectory {
			fmt.Fprintf(&b, "  [DIR] %s\n", e.Name)
			continue
		}
		if e.Size == nil {
			fmt.Fprintf(&b, "  [FILE] %s\n", e.Name)
			continue
		}
		fmt.Fprintf(&b, "  [FILE] %s %d bytes\n", e.Name, *e.Size)
	}
	return b.String()
}
