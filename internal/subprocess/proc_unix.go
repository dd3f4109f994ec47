//go:build unix

package subprocess

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the shell and the program it launches in their own
// process group so that signals reach both.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateGroup(p *os.Process) error {
	return signalGroup(p, syscall.SIGTERM)
}

func killGroup(p *os.Process) error {
	return signalGroup(p, syscall.SIGKILL)
}

func signalGroup(p *os.Process, sig syscall.Signal) error {
	if err := syscall.Kill(-p.Pid, sig); err != nil {
		// Fall back to the leader alone if the group is already gone.
		return p.Signal(sig)
	}

	return nil
}
