package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output pipes once a cancelable
// context is done or the shell has exited; grandchildren may keep them open.
// Uncancelable contexts wait for EOF.
const waitDelay = 2 * time.Second

// ShellExecutor runs commands through the host shell so that pipes and
// redirection inside whitelisted commands behave as typed.
//
// No timeout is imposed. The process lives until it exits or ctx is
// canceled; callers that must not cancel on client disconnect should pass a
// context detached from the request.
type ShellExecutor struct {
	// Shell is the interpreter binary, e.g. "/bin/sh" or "cmd".
	Shell string
	// ShellArgs precede the command line, e.g. ["-c"] or ["/C"].
	ShellArgs []string
}

// NewShellExecutor returns an executor for the given shell. An empty shell
// selects the platform default: "cmd /C" on Windows, "/bin/sh -c" elsewhere.
func NewShellExecutor(shell string) *ShellExecutor {
	if shell != "" {
		return &ShellExecutor{Shell: shell, ShellArgs: shellArgsFor(shell)}
	}
	if runtime.GOOS == "windows" {
		return &ShellExecutor{Shell: "cmd", ShellArgs: []string{"/C"}}
	}
	return &ShellExecutor{Shell: "/bin/sh", ShellArgs: []string{"-c"}}
}

func isCmdShell(shell string) bool {
	base := strings.ToLower(shell)
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return base == "cmd" || base == "cmd.exe"
}

// cmdExeLine builds the raw command line handed to cmd.exe. cmd does not
// follow the backslash escaping used for other Windows programs, so the
// command goes through verbatim inside one pair of quotes that /S strips.
func cmdExeLine(shell string, shellArgs []string, command string) string {
	if strings.ContainsAny(shell, " \t") {
		shell = `"` + shell + `"`
	}
	parts := []string{shell, "/S"}
	parts = append(parts, shellArgs...)
	return strings.Join(parts, " ") + ` "` + command + `"`
}

// shellArgsFor picks the command flag for a configured shell.
func shellArgsFor(shell string) []string {
	switch shell {
	case "cmd", "cmd.exe":
		return []string{"/C"}
	case "powershell", "powershell.exe", "pwsh", "pwsh.exe":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}

// Run executes req.Command synchronously and returns its captured output.
func (e *ShellExecutor) Run(ctx context.Context, req Request) (Result, error) {
	args := append(append([]string{}, e.ShellArgs...), req.Command)
	cmd := exec.CommandContext(ctx, e.Shell, args...)
	if ctx.Done() != nil {
		cmd.WaitDelay = waitDelay
	}
	if isCmdShell(e.Shell) {
		setRawCommandLine(cmd, cmdExeLine(e.Shell, e.ShellArgs, req.Command))
	}

	if req.Dir != "" {
		cmd.Dir = req.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{Command: req.Command}

	if err := cmd.Start(); err != nil {
		return result, &ProcessError{Op: OpStart, Command: req.Command, Err: err}
	}

	err := cmd.Wait()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	// The shell exited 0 but a background child held the pipes past waitDelay.
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil {
		err = nil
	}

	if err != nil {
		// Command ran but returned non-zero: carried as data.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		result.ExitCode = -1
		return result, &ProcessError{Op: OpWait, Command: req.Command, Err: err}
	}

	result.Succeeded = true
	return result, nil
}
