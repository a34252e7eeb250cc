package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/approval"
	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/backup"
	"github.com/warden-dev/warden/internal/clog"
	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/commands"
	"github.com/warden-dev/warden/internal/config"
	"github.com/warden-dev/warden/internal/engine"
	"github.com/warden-dev/warden/internal/executor"
	"github.com/warden-dev/warden/internal/prompt"
	"github.com/warden-dev/warden/internal/sandbox"
)

// app holds the fully wired mediation stack for one CLI invocation. One
// invocation is one session in the audit trail.
type app struct {
	cfg       *config.Config
	engine    *engine.Engine
	registry  *command.Registry
	backups   *backup.Manager
	sandbox   sandbox.Level
	workspace string
	session   uuid.UUID
	trail     *audit.Writer
	started   time.Time
}

// newApp loads configuration, applies flag overrides, and wires the
// engine. Callers must close the app when done so the history file and
// session end event are written.
func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	// The config names the real log destination; reconfigure now that
	// we know it.
	if cfg.Log.File != "" {
		if err := clog.Configure(cfg.Log.File, flagDebug); err != nil {
			clog.Warn("log file %s unavailable: %v", cfg.Log.File, err)
		}
	}
	if !flagDebug && cfg.Log.Level != "" {
		clog.SetLevel(clog.ParseLevel(cfg.Log.Level))
	}

	workspace := cfg.Workspace
	if flagWorkspace != "" {
		workspace = flagWorkspace
	}
	if workspace == "" {
		workspace, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine workspace: %w", err)
		}
	}
	workspace, err = filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}

	levelName := cfg.Sandbox.Level
	if flagSandbox != "" {
		levelName = flagSandbox
	}
	level := sandbox.DefaultLevel
	if levelName != "" {
		level, err = sandbox.ParseLevel(levelName)
		if err != nil {
			return nil, err
		}
	}

	registry := command.NewRegistry()
	if err := commands.RegisterBuiltins(registry, executor.NewRealExecutor(), sandbox.NewPolicy()); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}

	log, err := actionlog.LoadFile(historyPath(), historyBound(cfg))
	if err != nil {
		return nil, err
	}

	backups := backup.NewManager(cfg.Backup.Dir, backup.RetentionConfig{
		MaxBackups: cfg.Backup.MaxBackups,
		MaxAge:     time.Duration(cfg.Backup.MaxAgeDays) * 24 * time.Hour,
	})

	a := &app{
		cfg:       cfg,
		registry:  registry,
		backups:   backups,
		sandbox:   level,
		workspace: workspace,
		session:   uuid.New(),
		started:   time.Now(),
	}

	if cfg.Audit.AuditEnabled() {
		trail, err := audit.NewWriter(cfg.Audit.Dir, a.session)
		if err != nil {
			return nil, fmt.Errorf("open audit trail: %w", err)
		}
		a.trail = trail
		if err := trail.LogSessionStarted(map[string]any{
			"workspace": workspace,
			"sandbox":   level.String(),
		}); err != nil {
			clog.Warn("audit session start: %v", err)
		}
	}

	a.engine = engine.New(engine.Options{
		Registry: registry,
		Policy:   sandbox.NewPolicy(),
		Approver: a.approver(),
		Backups:  backups,
		Log:      log,
		Audit:    a.trail,
	})
	return a, nil
}

// approver picks the approval handler from config, flags, and whether a
// terminal is attached. Interactive mode without a terminal degrades to
// policy mode rather than hanging on a prompt nobody can answer.
func (a *app) approver() approval.Handler {
	if flagYes {
		return approval.AutoApprover{}
	}

	mode := a.cfg.Approval.Mode
	if flagApproval != "" {
		mode = flagApproval
	}
	auto := a.cfg.Approval.AutoApprove()

	if mode != "policy" && prompt.IsInteractive(os.Stdin) {
		return &approval.InteractiveHandler{
			Prompter:           prompt.NewStdinYesNoPrompter(os.Stdin, os.Stderr),
			AutoApproveLowRisk: auto,
		}
	}
	return &approval.PolicyHandler{AutoApproveLowRisk: auto}
}

// close persists the action log and ends the audit session.
func (a *app) close() {
	if err := actionlog.SaveFile(historyPath(), a.engine.ActionLog()); err != nil {
		clog.Error("save history: %v", err)
	}
	if a.trail != nil {
		if err := a.trail.LogSessionEnded(map[string]any{
			"duration_ms": time.Since(a.started).Milliseconds(),
		}); err != nil {
			clog.Warn("audit session end: %v", err)
		}
		if err := a.trail.Close(); err != nil {
			clog.Warn("close audit trail: %v", err)
		}
	}
}

// cmdContext builds the per-invocation command context.
func (a *app) cmdContext(ctx context.Context) *command.Context {
	return &command.Context{
		Ctx:       ctx,
		SessionID: a.session,
		Workspace: a.workspace,
		Sandbox:   a.sandbox,
		ActionLog: a.engine.ActionLog(),
	}
}

// historyPath returns the undo history location following XDG
// conventions, next to the default log file.
func historyPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "warden", "history.json")
}

func historyBound(cfg *config.Config) int {
	if cfg.History.MaxSize > 0 {
		return cfg.History.MaxSize
	}
	return actionlog.DefaultMaxSize
}

// queryEngine returns a reader over the configured audit directory.
func (a *app) queryEngine() *audit.QueryEngine {
	return audit.NewQueryEngine(a.cfg.Audit.Dir)
}
