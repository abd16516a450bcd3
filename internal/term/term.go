// Package term provides user-facing terminal output for the hostgate CLI.
// This is distinct from operational logging (see internal/clog).
//
// Print, Printf and Println write to stdout and are suppressed with --quiet.
// Warn and Error write to stderr and are never suppressed.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	silent bool
)

// SetSilent enables or disables silent mode.
func SetSilent(s bool) {
	mu.Lock()
	defer mu.Unlock()
	silent = s
}

// SetOutput sets the writer for stdout output.
// Pass nil to use os.Stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	stdout = w
}

// SetErrOutput sets the writer for stderr output.
// Pass nil to use os.Stderr.
func SetErrOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	stderr = w
}

// Printf formats according to a format specifier and writes to stdout.
func Printf(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprintf(stdout, format, a...)
}

// Println writes its operands to stdout followed by a newline.
func Println(a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprintln(stdout, a...)
}

// Section writes a header line followed by body, as used for command
// output blocks. Nothing is written when body is empty. A trailing
// newline is added to body when missing.
func Section(header, body string) {
	if body == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	_, _ = fmt.Fprintf(stdout, "%s\n%s", header, body)
}

// Warn writes a warning message to stderr with "Warning: " prefix.
func Warn(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(stderr, "Warning: %s\n", fmt.Sprintf(format, a...))
}

// Error writes an error message to stderr with "Error: " prefix.
func Error(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(stderr, "Error: %s\n", fmt.Sprintf(format, a...))
}

// Reset restores os.Stdout, os.Stderr and non-silent mode.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	stdout = os.Stdout
	stderr = os.Stderr
	silent = false
}
