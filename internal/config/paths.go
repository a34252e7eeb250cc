package config

import (
	"fmt"
	"os"

	"github.com/warden-dev/warden/internal/pathutil"
)

// Dir returns the warden configuration directory path.
// By default, this is ~/.config/warden/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/warden/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return pathutil.ExpandHome(base) + "/warden/"
}

// DataDir returns the warden data directory path, used for the default
// backup and audit locations. By default, this is ~/.local/share/warden/.
// If XDG_DATA_HOME is set, it uses $XDG_DATA_HOME/warden/ instead.
// The returned path always has a trailing slash.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = "~/.local/share"
	}
	return pathutil.ExpandHome(base) + "/warden/"
}

// EnsureDir creates the warden configuration directory if it
// doesn't exist. It uses 0700 permissions for security (user-only access).
// Returns nil if the directory already exists or was successfully created.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// GlobalConfigPath returns the full path to the configuration file.
// This is Dir() + "config.yaml".
func GlobalConfigPath() string {
	return Dir() + "config.yaml"
}
