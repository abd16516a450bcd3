// Package executor runs authorized commands on the host through the system
// shell and captures their output.
package executor

import (
	"context"
	"fmt"
)

// Executor executes commands on the host system.
//
// A command that runs and exits non-zero is not an error: the Result carries
// Succeeded=false with whatever output it produced. An error is returned only
// when the process could not be started or its output could not be collected.
type Executor interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Request contains the command execution parameters.
type Request struct {
	// Command is a single shell command line, passed to the shell verbatim.
	Command string
	// Dir is the working directory in host form. Empty means the
	// executor's own working directory.
	Dir string
}

// Result contains the outcome of a command that ran.
type Result struct {
	Command   string
	Stdout    string
	Stderr    string
	ExitCode  int
	Succeeded bool
}

// Process error operations.
const (
	OpStart = "start"
	OpWait  = "wait"
)

// ProcessError reports a command that could not be started or whose output
// could not be retrieved.
type ProcessError struct {
	Op      string // OpStart or OpWait
	Command string
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Command, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
