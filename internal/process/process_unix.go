//go:build !windows

package process

import (
	"os"
	"syscall"
)

// terminate sends SIGTERM so the command can exit cleanly; Run falls back to
// SIGKILL after KillDelay.
func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}
