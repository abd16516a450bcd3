// Package audit provides structured logging for gateway events.
// Log entries follow a key=value format suitable for parsing and analysis.
// Credentials are never part of an event.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of gateway event.
type EventType string

// Event types for gateway operations.
const (
	EventAuthFail  EventType = "AUTH_FAIL"
	EventRequest   EventType = "REQUEST"
	EventDeny      EventType = "DENY"
	EventComplete  EventType = "COMPLETE"
	EventFail      EventType = "FAIL"
	EventFileRead  EventType = "FILE_READ"
	EventFileWrite EventType = "FILE_WRITE"
	EventList      EventType = "LIST"
)

// Source identifies the request an event belongs to.
type Source struct {
	RequestID string
	Remote    string
}

// Event represents a gateway audit log entry.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Source    Source

	// Route is the requested endpoint (AUTH_FAIL).
	Route string

	// Cmd is the command line (REQUEST, DENY, COMPLETE, FAIL).
	Cmd string

	// Dir is the requested working directory (REQUEST).
	Dir string

	// Path is the file or directory operated on (FILE_READ, FILE_WRITE, LIST, FAIL).
	Path string

	// Entry is the whitelist entry that admitted the command (COMPLETE).
	Entry string

	// Reason explains a denial or failure.
	Reason string

	// ExitCode is the command exit code (COMPLETE).
	ExitCode int

	// Duration is the execution time (COMPLETE).
	Duration time.Duration

	// Bytes is the size read or written (FILE_READ, FILE_WRITE).
	Bytes int

	// Count is the number of directory entries (LIST).
	Count int
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z GATEWAY REQUEST id=... remote="127.0.0.1:5123" cmd="git status"
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" GATEWAY ")
	b.WriteString(string(e.Type))

	b.WriteString(" id=")
	b.WriteString(e.Source.RequestID)
	b.WriteString(" remote=")
	b.WriteString(quoteValue(e.Source.Remote))

	e.formatTypeSpecificFields(&b)

	return b.String()
}

// formatTypeSpecificFields appends type-specific key=value pairs to the builder.
func (e *Event) formatTypeSpecificFields(b *strings.Builder) {
	switch e.Type {
	case EventAuthFail:
		writeOptionalField(b, "route", e.Route)
		writeOptionalField(b, "reason", e.Reason)
	case EventRequest:
		b.WriteString(" cmd=")
		b.WriteString(quoteValue(e.Cmd))
		writeOptionalField(b, "dir", e.Dir)
	case EventDeny:
		b.WriteString(" cmd=")
		b.WriteString(quoteValue(e.Cmd))
		writeOptionalField(b, "reason", e.Reason)
	case EventComplete:
		b.WriteString(" cmd=")
		b.WriteString(quoteValue(e.Cmd))
		writeOptionalField(b, "entry", e.Entry)
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	case EventFail:
		writeOptionalField(b, "cmd", e.Cmd)
		writeOptionalField(b, "path", e.Path)
		writeOptionalField(b, "reason", e.Reason)
	case EventFileRead, EventFileWrite:
		b.WriteString(" path=")
		b.WriteString(quoteValue(e.Path))
		b.WriteString(" bytes=")
		b.WriteString(strconv.Itoa(e.Bytes))
	case EventList:
		b.WriteString(" path=")
		b.WriteString(quoteValue(e.Path))
		b.WriteString(" entries=")
		b.WriteString(strconv.Itoa(e.Count))
	}
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
// Values are always quoted for consistency and to handle spaces/special chars.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer.
// A nil *Logger discards everything.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes an event to the audit log.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}

	line := e.Format() + "\n"
	if _, err := l.w.Write([]byte(line)); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogAuthFail logs a rejected credential.
func (l *Logger) LogAuthFail(src Source, route, reason string) error {
	return l.Log(&Event{Type: EventAuthFail, Source: src, Route: route, Reason: reason})
}

// LogRequest logs an incoming command request.
func (l *Logger) LogRequest(src Source, cmd, dir string) error {
	return l.Log(&Event{Type: EventRequest, Source: src, Cmd: cmd, Dir: dir})
}

// LogDeny logs a command rejected by policy.
func (l *Logger) LogDeny(src Source, cmd, reason string) error {
	return l.Log(&Event{Type: EventDeny, Source: src, Cmd: cmd, Reason: reason})
}

// LogComplete logs a command that ran, whatever its exit code.
func (l *Logger) LogComplete(src Source, cmd, entry string, exitCode int, duration time.Duration) error {
	return l.Log(&Event{
		Type:     EventComplete,
		Source:   src,
		Cmd:      cmd,
		Entry:    entry,
		ExitCode: exitCode,
		Duration: duration,
	})
}

// LogFail logs an operation that could not be carried out. Either cmd or
// path identifies the subject.
func (l *Logger) LogFail(src Source, cmd, path, reason string) error {
	return l.Log(&Event{Type: EventFail, Source: src, Cmd: cmd, Path: path, Reason: reason})
}

// LogFileRead logs a successful file read.
func (l *Logger) LogFileRead(src Source, path string, n int) error {
	return l.Log(&Event{Type: EventFileRead, Source: src, Path: path, Bytes: n})
}

// LogFileWrite logs a successful file write.
func (l *Logger) LogFileWrite(src Source, path string, n int) error {
	return l.Log(&Event{Type: EventFileWrite, Source: src, Path: path, Bytes: n})
}

// LogList logs a directory listing.
func (l *Logger) LogList(src Source, path string, count int) error {
	return l.Log(&Event{Type: EventList, Source: src, Path: path, Count: count})
}
