package launcher

import "fmt"

// Result is the outcome of one launch: either the process exited with a code
// or it was terminated by a signal. Build it with Exited or Signaled.
type Result struct {
	code   int
	signal string
}

// Exited returns a result for a process that exited normally
func Exited(code int) Result {
	return Result{code: code}
}

// Signaled returns a result for a process killed by the named signal.
// It panics on an empty name; a signaled result must say which signal.
func Signaled(name string) Result {
	if name == "" {
		panic("launcher: Signaled requires a signal name")
	}
	return Result{signal: name}
}

// failed is the normalized result for a process that never started
func failed() Result {
	return Exited(1)
}

// ExitCode returns the exit code, ok is false when the process was signaled
func (r Result) ExitCode() (code int, ok bool) {
	if r.signal != "" {
		return 0, false
	}
	return r.code, true
}

// Signal returns the signal name, ok is false when the process exited normally
func (r Result) Signal() (name string, ok bool) {
	return r.signal, r.signal != ""
}

func (r Result) String() string {
	if r.signal != "" {
		return "signal " + r.signal
	}
	return fmt.Sprintf("exit %d", r.code)
}
