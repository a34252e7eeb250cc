package config

import (
	"fmt"

	"github.com/warden-dev/warden/internal/sandbox"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validApprovalModes defines the allowed approval modes.
var validApprovalModes = map[string]bool{
	"interactive": true,
	"policy":      true,
}

// Validate validates a parsed Config, checking that all fields contain
// valid values. It validates:
//   - Sandbox.Level parses as a sandbox level (if non-empty)
//   - Approval.Mode is interactive or policy (if non-empty)
//   - Backup.MaxBackups and Backup.MaxAgeDays are non-negative
//   - History.MaxSize is non-negative
//   - Log.Level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error with a clear message
// indicating which field is invalid.
func Validate(cfg *Config) error {
	if cfg.Sandbox.Level != "" {
		if _, err := sandbox.ParseLevel(cfg.Sandbox.Level); err != nil {
			return fmt.Errorf("sandbox.level: %w", err)
		}
	}

	if cfg.Approval.Mode != "" && !validApprovalModes[cfg.Approval.Mode] {
		return fmt.Errorf("approval.mode: invalid value %q, must be one of: interactive, policy", cfg.Approval.Mode)
	}

	if cfg.Backup.MaxBackups < 0 {
		return fmt.Errorf("backup.max_backups: must be non-negative, got %d", cfg.Backup.MaxBackups)
	}
	if cfg.Backup.MaxAgeDays < 0 {
		return fmt.Errorf("backup.max_age_days: must be non-negative, got %d", cfg.Backup.MaxAgeDays)
	}

	if cfg.History.MaxSize < 0 {
		return fmt.Errorf("history.max_size: must be non-negative, got %d", cfg.History.MaxSize)
	}

	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}
