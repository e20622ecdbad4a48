package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName names the per-user directories owned by codex
const AppName = "codex"

// ConfigDir returns the dotfile directory holding the credential record
// Typically ~/.codex/
func ConfigDir() string {
	return filepath.Join(xdg.Home, "."+AppName)
}

// DefaultPath returns the config file used when --config isn't given
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// DataDir returns the XDG-compliant data directory for codex
// Typically ~/.local/share/codex/ on Linux (secret store backends)
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ResolvePath turns an explicit config path into an absolute one, expanding a
// leading ~. An empty path resolves to DefaultPath.
func ResolvePath(explicit string) (string, error) {
	if explicit == "" {
		return DefaultPath(), nil
	}

	if explicit == "~" || strings.HasPrefix(explicit, "~/") {
		explicit = filepath.Join(xdg.Home, explicit[1:])
	}

	abs, err := filepath.Abs(explicit)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", explicit, err)
	}

	return abs, nil
}
