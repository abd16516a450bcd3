//go:build !windows

package executor

import "os/exec"

// setRawCommandLine is a no-op outside Windows: argv is passed as a vector.
func setRawCommandLine(_ *exec.Cmd, _ string) {}
