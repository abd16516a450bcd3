package clog

import (
	"io"
	"strings"
)

// std backs the package-level functions. serve configures it once at startup.
var std = NewLogger()

// Configure applies the log section of the hostgate config to the package
// logger. A non-empty logPath opens (or creates) the JSON log file; daemon
// mode keeps operational lines off stderr.
func Configure(logPath string, level Level, daemonMode bool) error {
	std.SetLevel(level)
	std.SetDaemonMode(daemonMode)
	if logPath == "" {
		return nil
	}
	f, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	std.SetFileOutput(f)
	return nil
}

// Debug, Info, Warn and Error log through the package logger.
func Debug(format string, args ...any) { std.Debug(format, args...) }
func Info(format string, args ...any)  { std.Info(format, args...) }
func Warn(format string, args ...any)  { std.Warn(format, args...) }
func Error(format string, args ...any) { std.Error(format, args...) }

// Close closes the log file opened by Configure, if any.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()
	if c, ok := std.fileWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Reset restores a fresh package logger.
func Reset() {
	std = NewLogger()
}

// TestLogger returns a debug-level logger writing JSON lines to w only.
func TestLogger(w io.Writer) *Logger {
	l := NewLogger()
	l.SetFileOutput(w)
	l.SetErrOutput(nil)
	l.SetLevel(LevelDebug)
	return l
}

// ReplaceGlobal swaps the package logger and returns the previous one.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}

// Writer adapts the package logger to an io.Writer at a fixed level, for
// http.Server.ErrorLog.
func Writer(level Level) io.Writer {
	return levelWriter(level)
}

type levelWriter Level

func (w levelWriter) Write(p []byte) (int, error) {
	std.log(Level(w), "%s", strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
