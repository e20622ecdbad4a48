package secrets

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// Environment variables read by OptionsFromEnv
const (
	passwordEnv = "CODEX_STORE_PASSWORD"
	backendEnv  = "CODEX_STORE_BACKEND"
	quietEnv    = "CODEX_QUIET"
)

// Options selects and configures the secret store backend
type Options struct {
	// Password unlocks the encrypted file (and the keyring's file backend)
	Password string

	// FilePath overrides DefaultFilePath
	FilePath string

	// ForceFile skips the OS keyring
	ForceFile bool

	// Quiet demotes fallback warnings to debug messages
	Quiet bool

	Logger *slog.Logger
}

// OptionsFromEnv builds Options from CODEX_STORE_PASSWORD,
// CODEX_STORE_BACKEND=file and CODEX_QUIET
func OptionsFromEnv(logger *slog.Logger) Options {
	quiet := os.Getenv(quietEnv)
	return Options{
		Password:  os.Getenv(passwordEnv),
		ForceFile: strings.EqualFold(os.Getenv(backendEnv), "file"),
		Quiet:     quiet == "1" || strings.EqualFold(quiet, "true"),
		Logger:    logger,
	}
}

// Open returns the OS keyring when it is usable and the encrypted file
// otherwise. WSL and headless Linux go straight to the file.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reason := fallbackReason(opts.ForceFile)
	if reason == "" {
		store, err := NewKeyringStore(opts.Password)
		if err == nil {
			logger.Debug("using OS keyring for secrets")
			return store, nil
		}
		reason = err.Error()
	}

	path := opts.FilePath
	if path == "" {
		path = DefaultFilePath()
	}
	store, err := NewFileStore(path, opts.Password)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.Quiet {
		level = slog.LevelDebug
	}
	logger.Log(context.Background(), level, "using encrypted file for secrets", "reason", reason, "path", store.path)
	if opts.Password == "" {
		logger.Log(context.Background(), level, "no "+passwordEnv+" set, file key derives from user and host names")
	}

	return store, nil
}

// fallbackReason says why the keyring must be skipped, empty when it can be tried
func fallbackReason(forceFile bool) string {
	switch {
	case forceFile:
		return backendEnv + "=file"
	case IsWSL():
		return "WSL detected"
	case IsHeadless():
		return "no display server"
	default:
		return ""
	}
}

// IsWSL reports whether this is Linux under Windows Subsystem for Linux
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless reports a Linux session without X11 or Wayland
func IsHeadless() bool {
	return runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
