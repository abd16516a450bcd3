package executor

import (
	"os/exec"
	"syscall"
)

// setRawCommandLine passes line to CreateProcess unmodified, bypassing the
// argument escaping exec applies to Args.
func setRawCommandLine(cmd *exec.Cmd, line string) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CmdLine = line
}
