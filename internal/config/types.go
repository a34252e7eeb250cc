// Package config provides configuration types for warden. These types
// map to the YAML configuration file, typically stored at
// ~/.config/warden/config.yaml.
package config

// Config is the top-level warden configuration.
type Config struct {
	Workspace string         `yaml:"workspace,omitempty"`
	Sandbox   SandboxConfig  `yaml:"sandbox,omitempty"`
	Approval  ApprovalConfig `yaml:"approval,omitempty"`
	Backup    BackupConfig   `yaml:"backup,omitempty"`
	Audit     AuditConfig    `yaml:"audit,omitempty"`
	History   HistoryConfig  `yaml:"history,omitempty"`
	Log       LogConfig      `yaml:"log,omitempty"`
}

// SandboxConfig selects the default sandbox level.
type SandboxConfig struct {
	Level string `yaml:"level,omitempty"`
}

// ApprovalConfig controls how approval requests are decided.
// Mode is "interactive" (prompt when attached to a terminal) or
// "policy" (never prompt; only configured auto-approvals pass).
type ApprovalConfig struct {
	Mode               string `yaml:"mode,omitempty"`
	AutoApproveLowRisk *bool  `yaml:"auto_approve_low_risk,omitempty"`
}

// BackupConfig controls the snapshot store and its retention.
type BackupConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// HistoryConfig bounds the undo/redo log.
type HistoryConfig struct {
	MaxSize int `yaml:"max_size,omitempty"`
}

// LogConfig contains operational logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// AutoApproveLowRisk reports the effective auto-approval setting.
func (c *ApprovalConfig) AutoApprove() bool {
	return c.AutoApproveLowRisk == nil || *c.AutoApproveLowRisk
}

// AuditEnabled reports whether the audit trail is on. It defaults to
// enabled; the trail is the point of the tool.
func (c *AuditConfig) AuditEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
