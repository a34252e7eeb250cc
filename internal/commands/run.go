package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/executor"
	"github.com/warden-dev/warden/internal/sandbox"
)

// maxRunTimeout caps how long a shell command may be allowed to run.
const maxRunTimeout = 300 * time.Second

// RunArgs are the arguments for the run command.
type RunArgs struct {
	Command        string            `json:"command"`
	Workdir        string            `json:"workdir,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
}

// RunCommand executes a shell command through the host executor. The
// sandbox command-string screen is applied on both preview and execute,
// so a denied command never reaches the shell.
type RunCommand struct {
	exec   executor.Executor
	policy *sandbox.Policy
}

// NewRunCommand returns the run command.
func NewRunCommand(exec executor.Executor, policy *sandbox.Policy) *RunCommand {
	return &RunCommand{exec: exec, policy: policy}
}

// Descriptor implements command.Runner.
func (c *RunCommand) Descriptor() *command.Descriptor {
	return &command.Descriptor{
		Name:            "run",
		Description:     "Execute a shell command on the host",
		Version:         "1.0.0",
		Author:          "warden",
		Capabilities:    sandbox.CapabilitySet{sandbox.CapExecuteShell},
		SupportsPreview: true,
		SupportsDryRun:  false,
	}
}

// ValidateArgs implements command.Runner.
func (c *RunCommand) ValidateArgs(raw json.RawMessage) error {
	var args RunArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("parse run args: %w", err)
	}
	if strings.TrimSpace(args.Command) == "" {
		return errors.New("run: command must not be empty")
	}
	if time.Duration(args.TimeoutSeconds)*time.Second > maxRunTimeout {
		return fmt.Errorf("run: timeout %ds exceeds the %s maximum", args.TimeoutSeconds, maxRunTimeout)
	}
	return nil
}

// Preview implements command.Runner. A shell command always requires
// approval.
func (c *RunCommand) Preview(raw json.RawMessage, cmdCtx *command.Context) (*command.Preview, error) {
	var args RunArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse run args: %w", err)
	}
	if err := c.policy.CheckShellCommand(args.Command, cmdCtx.Sandbox); err != nil {
		return nil, err
	}
	return &command.Preview{
		CommandID:        cmdCtx.CommandID,
		Description:      fmt.Sprintf("Execute shell command: %s", args.Command),
		Actions:          []command.PreviewAction{command.ShellAction(args.Command)},
		RequiresApproval: true,
	}, nil
}

// Execute implements command.Runner.
func (c *RunCommand) Execute(raw json.RawMessage, cmdCtx *command.Context) (*command.Result, error) {
	var args RunArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse run args: %w", err)
	}

	if err := c.policy.CheckShellCommand(args.Command, cmdCtx.Sandbox); err != nil {
		return command.Failure(cmdCtx.CommandID, err.Error()), nil
	}

	workdir := args.Workdir
	if workdir == "" {
		workdir = cmdCtx.Workspace
	}

	resp := c.exec.Execute(cmdCtx.Done(), executor.Request{
		Command: args.Command,
		Workdir: workdir,
		Env:     args.Env,
		Timeout: time.Duration(args.TimeoutSeconds) * time.Second,
	})

	switch {
	case resp.Cancelled:
		// Surface cancellation as an error so the engine can tell it
		// apart from a command failure.
		return nil, context.Canceled
	case resp.TimedOut:
		return command.Failure(cmdCtx.CommandID, resp.Error), nil
	case resp.ExitCode != 0:
		res := command.Failure(cmdCtx.CommandID, fmt.Sprintf("exit code %d", resp.ExitCode))
		res.Output = resp.Stdout + resp.Stderr
		return res, nil
	}

	return &command.Result{
		CommandID: cmdCtx.CommandID,
		Success:   true,
		Output:    resp.Stdout,
	}, nil
}
