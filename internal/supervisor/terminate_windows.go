//go:build windows

package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// terminate removes the backend's whole process tree. taskkill /T is used
// because a plain TerminateProcess would orphan any workers the backend
// spawned, leaving a stale server bound to the backend port.
func terminate(p *os.Process) error {
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(p.Pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill pid %d: %v: %s", p.Pid, err, strings.TrimSpace(string(out)))
	}
	return nil
}
