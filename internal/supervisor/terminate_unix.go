//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"syscall"
)

// terminate kills the backend's process group. ESRCH means the group is
// already gone and is not an error; any other group-kill failure falls back
// to killing the single process.
func terminate(p *os.Process) error {
	err := syscall.Kill(-p.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return p.Kill()
}
