package config

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with all defaults populated. The
// defaults favor safety: workspace-write sandboxing, interactive
// approval, and the audit trail enabled.
func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			Level: "workspace-write",
		},
		Approval: ApprovalConfig{
			Mode:               "interactive",
			AutoApproveLowRisk: boolPtr(true),
		},
		Backup: BackupConfig{
			Dir:        "~/.local/share/warden/backups",
			MaxBackups: 50,
			MaxAgeDays: 30,
		},
		Audit: AuditConfig{
			Enabled: boolPtr(true),
			Dir:     "~/.local/share/warden/audit",
		},
		History: HistoryConfig{
			MaxSize: 100,
		},
		Log: LogConfig{
			File:  "~/.local/state/warden/warden.log",
			Level: "info",
		},
	}
}

// defaultConfigTemplate is the commented config file written on first
// run. It must stay in sync with DefaultConfig.
const defaultConfigTemplate = `# warden configuration
#
# All settings are optional; anything omitted falls back to the
# defaults shown here.

# Workspace root for relative paths and write containment. Empty means
# the current directory at invocation time.
# workspace: ""

sandbox:
  # read-only | workspace-write | danger-full-access
  level: workspace-write

approval:
  # interactive: prompt on the terminal before risky commands run.
  # policy: never prompt; only auto-approvals pass.
  mode: interactive
  auto_approve_low_risk: true

backup:
  dir: ~/.local/share/warden/backups
  max_backups: 50
  max_age_days: 30

audit:
  enabled: true
  dir: ~/.local/share/warden/audit

history:
  # Bound on the undo/redo log. Oldest entries are evicted first.
  max_size: 100

log:
  file: ~/.local/state/warden/warden.log
  # debug | info | warn | error
  level: info
`
