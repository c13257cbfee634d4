//go:build windows

package session

import (
	"os/exec"
)

// configurePTYCommand is a no-op on Windows; ConPTY setup happens
// inside xpty.
func configurePTYCommand(cmd *exec.Cmd) {
	_ = cmd
}
