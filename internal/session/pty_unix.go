//go:build !windows

package session

import (
	"os/exec"
	"syscall"
)

// configurePTYCommand makes the child a session leader with the PTY as
// its controlling terminal. Job-control shells need this.
func configurePTYCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		// FD 0 in the child; xpty wires stdin to the PTY slave.
		Ctty: 0,
	}
}
