//go:build !unix

package launcher

import "os"

// signalName always reports a normal exit; there are no POSIX signals here
func signalName(state *os.ProcessState) (string, bool) {
	return "", false
}
