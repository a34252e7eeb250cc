// Package engine drives a command through the full mediation pipeline:
// lookup, validation, permission check, preview, approval, backup,
// execution, undo recording, and audit. The pipeline is synchronous;
// cancellation comes in through the invocation context.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/approval"
	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/backup"
	"github.com/warden-dev/warden/internal/clog"
	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/sandbox"
)

// ErrCancelled marks a command cut short by context cancellation. It
// wraps context.Canceled, so errors.Is works against either.
var ErrCancelled = fmt.Errorf("command cancelled: %w", context.Canceled)

// State names the stages of a command's lifecycle, used in audit
// details and tests.
type State string

// Lifecycle states.
const (
	StateRequested        State = "requested"
	StateValidated        State = "validated"
	StatePreviewGenerated State = "preview_generated"
	StatePendingApproval  State = "pending_approval"
	StateApproved         State = "approved"
	StateRejected         State = "rejected"
	StateExecuting        State = "executing"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
	StateCancelled        State = "cancelled"
)

// Engine executes commands through the mediation pipeline.
type Engine struct {
	registry *command.Registry
	policy   *sandbox.Policy
	approver approval.Handler
	backups  *backup.Manager
	log      *actionlog.Log
	audit    *audit.Writer
}

// Options configures an Engine. All fields are required except Audit,
// which may be nil to disable the trail (tests only).
type Options struct {
	Registry *command.Registry
	Policy   *sandbox.Policy
	Approver approval.Handler
	Backups  *backup.Manager
	Log      *actionlog.Log
	Audit    *audit.Writer
}

// New returns an Engine.
func New(opts Options) *Engine {
	return &Engine{
		registry: opts.Registry,
		policy:   opts.Policy,
		approver: opts.Approver,
		backups:  opts.Backups,
		log:      opts.Log,
		audit:    opts.Audit,
	}
}

// ActionLog returns the engine's undo/redo log.
func (e *Engine) ActionLog() *actionlog.Log {
	return e.log
}

// Execute runs one command through the pipeline. Security and command
// failures come back as a Result with Success=false; infrastructure
// failures and cancellation come back as errors. Once the
// command_requested event is written, every outcome is paired with a
// terminal audit event so the trail always resolves.
func (e *Engine) Execute(name string, args json.RawMessage, cmdCtx *command.Context) (*command.Result, error) {
	runner, err := e.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if cmdCtx.CommandID == uuid.Nil {
		cmdCtx.CommandID = uuid.New()
	}
	if cmdCtx.ActionLog == nil {
		cmdCtx.ActionLog = e.log
	}
	id := cmdCtx.CommandID
	desc := runner.Descriptor()

	e.logCommand(audit.EventCommandRequested, id, map[string]any{
		"command": name,
		"sandbox": cmdCtx.Sandbox.String(),
		"dry_run": cmdCtx.DryRun,
	})

	if err := runner.ValidateArgs(args); err != nil {
		return e.fail(id, fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	// Permission check: required level first, then the capability set.
	if !command.CanRunAt(desc, cmdCtx.Sandbox) {
		e.logCommand(audit.EventPermissionCheck, id, map[string]any{
			"allowed": false,
			"reason":  fmt.Sprintf("command requires the %s sandbox level", desc.RequiredLevel),
		})
		return e.deny(id, fmt.Sprintf("command %s requires the %s sandbox level, running at %s",
			name, desc.RequiredLevel, cmdCtx.Sandbox)), nil
	}
	if err := e.policy.Check(desc.Capabilities, cmdCtx.Sandbox); err != nil {
		e.logCommand(audit.EventPermissionCheck, id, map[string]any{
			"allowed": false,
			"reason":  err.Error(),
		})
		return e.deny(id, err.Error()), nil
	}
	e.logCommand(audit.EventPermissionCheck, id, map[string]any{"allowed": true})

	// Preview always runs, even when nobody will look at it: the audit
	// trail records intent, not just effect.
	preview, err := runner.Preview(args, cmdCtx)
	if err != nil {
		var violation *sandbox.Violation
		if errors.As(err, &violation) {
			return e.deny(id, violation.Error()), nil
		}
		return e.fail(id, fmt.Sprintf("preview: %v", err)), nil
	}
	preview.CommandID = id
	e.logCommand(audit.EventCommandPreview, id, map[string]any{
		"description":       preview.Description,
		"actions":           len(preview.Actions),
		"requires_approval": preview.RequiresApproval,
	})

	if cmdCtx.PreviewOnly {
		out, err := json.MarshalIndent(preview, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode preview: %w", err)
		}
		e.logCommand(audit.EventCommandCompleted, id, map[string]any{
			"success": true,
			"state":   string(StatePreviewGenerated),
		})
		return &command.Result{CommandID: id, Success: true, Output: string(out)}, nil
	}

	if preview.RequiresApproval {
		decision, err := e.approver.Decide(cmdCtx.Done(), preview, &approval.Request{
			CommandName: name,
			Risk:        classify(preview),
			Reason:      preview.Description,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				e.logCommand(audit.EventCommandCancelled, id, map[string]any{
					"state": string(StatePendingApproval),
				})
				return nil, ErrCancelled
			}
			e.logCommand(audit.EventCommandCompleted, id, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("approval: %w", err)
		}
		if decision != approval.Approved {
			e.logCommand(audit.EventCommandRejected, id, map[string]any{
				"command": name,
				"risk":    classify(preview).String(),
			})
			return command.Failure(id, "command rejected by approval"), nil
		}
		e.logCommand(audit.EventCommandApproved, id, map[string]any{"command": name})
	}

	// Mutating commands get a backup before anything touches disk. A
	// backup failure aborts the run: failing closed beats running a
	// mutation we cannot revert.
	if desc.Capabilities.Contains(sandbox.CapWriteFile) && !cmdCtx.DryRun {
		if err := e.createBackup(preview, id); err != nil {
			e.logCommand(audit.EventCommandCompleted, id, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return nil, err
		}
	}

	result, err := runner.Execute(args, cmdCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(cmdCtx.Done().Err(), context.Canceled) {
			e.logCommand(audit.EventCommandCancelled, id, map[string]any{
				"state": string(StateExecuting),
			})
			return nil, ErrCancelled
		}
		e.logCommand(audit.EventCommandCompleted, id, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	result.CommandID = id

	e.logCommand(audit.EventCommandCompleted, id, map[string]any{
		"success": result.Success,
		"error":   result.Error,
	})

	if result.Success {
		for _, m := range result.Mutations {
			cmdCtx.ActionLog.Record(m)
			e.logCommand(audit.EventFileOperation, id, map[string]any{
				"operation": string(m.After.Kind),
				"path":      m.After.PrimaryPath(),
			})
		}
	}

	return result, nil
}

// deny records a security denial and builds the failed result.
func (e *Engine) deny(id uuid.UUID, reason string) *command.Result {
	e.logCommand(audit.EventSecurityViolation, id, map[string]any{"reason": reason})
	e.logCommand(audit.EventCommandCompleted, id, map[string]any{
		"success": false,
		"error":   reason,
	})
	return command.Failure(id, reason)
}

// fail records a command failure and builds the failed result.
func (e *Engine) fail(id uuid.UUID, reason string) *command.Result {
	e.logCommand(audit.EventCommandCompleted, id, map[string]any{
		"success": false,
		"error":   reason,
	})
	return command.Failure(id, reason)
}

// createBackup snapshots the files the preview says will be written.
func (e *Engine) createBackup(preview *command.Preview, id uuid.UUID) error {
	var paths []string
	for _, a := range preview.Actions {
		if a.Kind == command.PreviewWrite {
			paths = append(paths, a.Path)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	info, err := e.backups.Create(paths, id)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	e.logCommand(audit.EventBackupCreated, id, map[string]any{
		"backup_id": info.ID.String(),
		"files":     len(info.Files),
	})

	if err := e.backups.Sweep(); err != nil {
		clog.Warn("backup sweep failed: %v", err)
	}
	return nil
}

// classify derives the approval risk from the previewed actions, taking
// the riskiest one.
func classify(preview *command.Preview) approval.Risk {
	risk := approval.RiskLow
	for _, a := range preview.Actions {
		var r approval.Risk
		switch a.Kind {
		case command.PreviewShell:
			r = approval.ClassifyShell(a.Command)
		case command.PreviewWrite:
			_, err := os.Stat(a.Path)
			r = approval.ClassifyFileWrite(err == nil)
		case command.PreviewRead:
			r = approval.RiskLow
		}
		if r > risk {
			risk = r
		}
	}
	return risk
}

func (e *Engine) logCommand(typ audit.EventType, id uuid.UUID, details map[string]any) {
	if e.audit == nil {
		return
	}
	if err := e.audit.LogCommand(typ, id, details); err != nil {
		clog.Error("audit write failed: %v", err)
	}
}
