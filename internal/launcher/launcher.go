// Package launcher runs one external command per call with an environment
// overlay and reports how it ended. A dry-run mode describes the command
// instead of running it.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"syscall"
)

// redacted replaces secret values in the dry-run report
const redacted = "********"

// Request describes a single command invocation.
type Request struct {
	// Name is the executable, looked up in PATH when it has no separator.
	Name string

	// Args are passed to the executable in order.
	Args []string

	// Dir is the working directory. Empty inherits the caller's.
	Dir string

	// Env overlays the inherited environment; these values win.
	Env map[string]string

	// DryRun reports the command instead of running it.
	DryRun bool

	// Redact lists Env keys whose values are hidden in the dry-run report.
	Redact []string
}

// CommandLine returns the command and its arguments joined by spaces
func (r Request) CommandLine() string {
	return strings.Join(append([]string{r.Name}, r.Args...), " ")
}

// Launcher starts processes wired to the given standard streams.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Environ returns the inherited environment. Defaults to os.Environ.
	Environ func() []string
}

// New creates a launcher connected to the given streams
func New(stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) *Launcher {
	return &Launcher{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}
}

// Launch runs the request and blocks until the process ends.
// Failures to start are reported on Stderr and normalized to exit code 1.
func (l *Launcher) Launch(ctx context.Context, req Request) Result {
	dir := ""
	if req.Dir != "" {
		abs, err := filepath.Abs(req.Dir)
		if err != nil {
			fmt.Fprintf(l.Stderr, "failed to resolve working directory %s: %v\n", req.Dir, err)
			return failed()
		}
		dir = abs
	}

	if req.DryRun {
		l.report(req, dir)
		return Exited(0)
	}

	return l.run(ctx, req, dir)
}

// report writes what Launch would have done
func (l *Launcher) report(req Request, dir string) {
	fmt.Fprintf(l.Stdout, "Would run: %s\n", req.CommandLine())
	if dir != "" {
		fmt.Fprintf(l.Stdout, "  in %s\n", dir)
	}

	if len(req.Env) > 0 {
		entries := make([]string, 0, len(req.Env))
		for _, key := range sortedKeys(req.Env) {
			value := req.Env[key]
			if slices.Contains(req.Redact, key) {
				value = redacted
			}
			entries = append(entries, key+"="+value)
		}
		fmt.Fprintf(l.Stdout, "  with env: %s\n", strings.Join(entries, ", "))
	}
}

func (l *Launcher) run(ctx context.Context, req Request, dir string) Result {
	logger := l.logger()

	cmd := exec.CommandContext(ctx, req.Name, req.Args...)
	cmd.Env = MergeEnv(l.environ(), req.Env)
	cmd.Dir = dir

	// Connect stdio; *os.File streams are handed to the child as-is
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	logger.Debug("starting process", "command", req.Name, "args", req.Args, "dir", dir, "overlay", len(req.Env))
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(l.Stderr, "%v\n", err)
		logger.Warn("process failed to start", "command", req.Name, "error", err)
		return failed()
	}

	stop := forwardSignals(cmd.Process)
	err := cmd.Wait()
	stop()

	result, err := outcome(err)
	if err != nil {
		fmt.Fprintf(l.Stderr, "%v\n", err)
		logger.Warn("process wait failed", "command", req.Name, "error", err)
		return result
	}

	logger.Debug("process finished", "command", req.Name, "result", result.String())
	return result
}

// outcome maps the error from Wait to a result. The error is returned only
// when it doesn't describe the process ending (e.g. a failed stdio copy).
func outcome(waitErr error) (Result, error) {
	if waitErr == nil {
		return Exited(0), nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if name, ok := signalName(exitErr.ProcessState); ok {
			return Signaled(name), nil
		}
		return Exited(exitErr.ExitCode()), nil
	}

	return failed(), waitErr
}

// forwardSignals relays interrupt and terminate to proc until stop is called
func forwardSignals(proc *os.Process) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigChan:
				_ = proc.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// MergeEnv overlays env onto base KEY=VALUE entries. Overlay values replace
// inherited ones in place, new keys are appended in sorted order, and
// duplicate inherited keys keep their first value.
func MergeEnv(base []string, overlay map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(base))

	for _, entry := range base {
		key, _, found := strings.Cut(entry, "=")
		// Windows keeps per-drive cwd in "=C:=C:\..." entries
		if !found || key == "" {
			merged = append(merged, entry)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if value, ok := overlay[key]; ok {
			merged = append(merged, key+"="+value)
			continue
		}
		merged = append(merged, entry)
	}

	for _, key := range sortedKeys(overlay) {
		if !seen[key] {
			merged = append(merged, key+"="+overlay[key])
		}
	}

	return merged
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Launcher) environ() []string {
	if l.Environ != nil {
		return l.Environ()
	}
	return os.Environ()
}

func (l *Launcher) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}
