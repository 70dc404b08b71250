//go:build windows

package process

import "os"

// terminate kills the command directly.
// Windows does not support SIGTERM; processes are always hard-killed.
func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
