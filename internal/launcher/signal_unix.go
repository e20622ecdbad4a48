//go:build unix

package launcher

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// signalName returns the SIG* name of the signal that killed the process
func signalName(state *os.ProcessState) (string, bool) {
	if state == nil {
		return "", false
	}

	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return "", false
	}

	sig := status.Signal()
	if name := unix.SignalName(sig); name != "" {
		return name, true
	}
	return sig.String(), true
}
