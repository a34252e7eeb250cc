// Package command defines the contract every runnable command satisfies:
// a static descriptor, argument validation, a preview of intended
// effects, and execution. Runners are registered by name in a Registry;
// the engine drives them through the full mediation pipeline.
package command

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/sandbox"
)

// Descriptor is the static metadata for a command. One per runner,
// immutable after registration.
type Descriptor struct {
	Name            string
	Description     string
	Version         string
	Author          string
	Capabilities    sandbox.CapabilitySet
	RequiredLevel   sandbox.Level
	SupportsPreview bool
	SupportsDryRun  bool
}

// Context carries the per-invocation state a runner needs. The embedded
// Go context propagates cancellation; everything else is read-only from
// the runner's point of view except the action log.
type Context struct {
	Ctx         context.Context
	SessionID   uuid.UUID
	CommandID   uuid.UUID
	UserID      string
	Workspace   string
	Sandbox     sandbox.Level
	DryRun      bool
	PreviewOnly bool

	// ActionLog receives recorded mutations. May be nil for commands
	// that never mutate.
	ActionLog *actionlog.Log
}

// Done returns the invocation's cancellation context, defaulting to
// Background when none was set.
func (c *Context) Done() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// PreviewActionKind identifies what a previewed step would do.
type PreviewActionKind string

// Preview action kinds.
const (
	PreviewRead  PreviewActionKind = "read"
	PreviewWrite PreviewActionKind = "write"
	PreviewShell PreviewActionKind = "shell"
)

// PreviewAction is one intended step of a command. Which fields are set
// depends on Kind: Read and Write carry Path (Write also Content),
// Shell carries Command.
type PreviewAction struct {
	Kind    PreviewActionKind `json:"kind"`
	Path    string            `json:"path,omitempty"`
	Content string            `json:"content,omitempty"`
	Command string            `json:"command,omitempty"`
}

// ReadAction builds a read preview step.
func ReadAction(path string) PreviewAction {
	return PreviewAction{Kind: PreviewRead, Path: path}
}

// WriteAction builds a write preview step.
func WriteAction(path, content string) PreviewAction {
	return PreviewAction{Kind: PreviewWrite, Path: path, Content: content}
}

// ShellAction builds a shell preview step.
func ShellAction(cmd string) PreviewAction {
	return PreviewAction{Kind: PreviewShell, Command: cmd}
}

// Preview describes what a command would do if executed, before any
// side effect happens.
type Preview struct {
	CommandID        uuid.UUID       `json:"command_id"`
	Description      string          `json:"description"`
	Actions          []PreviewAction `json:"actions"`
	RequiresApproval bool            `json:"requires_approval"`
}

// Result is the outcome of an execution. Command-level failures
// (including sandbox denials) come back as Success=false with Error
// set; only infrastructure problems surface as Go errors from the
// engine.
type Result struct {
	CommandID uuid.UUID `json:"command_id"`
	Success   bool      `json:"success"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`

	// Mutations are the reversible filesystem changes the command made,
	// recorded to the action log by the engine on success.
	Mutations []actionlog.Action `json:"-"`
}

// Failure builds a failed result for the given command id.
func Failure(id uuid.UUID, msg string) *Result {
	return &Result{CommandID: id, Success: false, Error: msg}
}

// Runner is the interface every command implements.
type Runner interface {
	// Descriptor returns the command's static metadata.
	Descriptor() *Descriptor

	// ValidateArgs checks the raw JSON arguments without side effects.
	ValidateArgs(args json.RawMessage) error

	// Preview reports the intended effects without performing them.
	Preview(args json.RawMessage, cmdCtx *Context) (*Preview, error)

	// Execute performs the command.
	Execute(args json.RawMessage, cmdCtx *Context) (*Result, error)
}

// CanRunAt reports whether a command's required sandbox level is
// satisfied by the active one.
func CanRunAt(d *Descriptor, level sandbox.Level) bool {
	return level >= d.RequiredLevel
}
