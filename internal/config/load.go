package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/warden-dev/warden/internal/clog"
	"github.com/warden-dev/warden/internal/pathutil"
)

// Load loads the configuration. The path is resolved in order of
// precedence: the explicit path argument (from --config), the
// WARDEN_CONFIG environment variable, then GlobalConfigPath().
//
// A missing file at the default path returns DefaultConfig() after
// writing the commented template for next time. A missing file at an
// explicitly requested path is an error: the user asked for that file.
// A file that exists but cannot be parsed or validated is always an
// error. All paths containing ~ are expanded to the home directory.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("WARDEN_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = GlobalConfigPath()
		}
	}
	path = pathutil.ExpandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			clog.Debug("config: %s not found, using defaults", path)
			if writeErr := WriteDefaultConfig(); writeErr != nil {
				clog.Warn("config: failed to create default config: %v", writeErr)
			}
			cfg := DefaultConfig()
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Unmarshal onto a populated default so omitted keys keep their
	// default values.
	cfg := DefaultConfig()
	if err := strictUnmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// expandPaths expands ~ to the home directory in all path fields.
func expandPaths(cfg *Config) {
	cfg.Workspace = pathutil.ExpandHome(cfg.Workspace)
	cfg.Backup.Dir = pathutil.ExpandHome(cfg.Backup.Dir)
	cfg.Audit.Dir = pathutil.ExpandHome(cfg.Audit.Dir)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
}
