package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/sandbox"
)

// WriteArgs are the arguments for the write command.
type WriteArgs struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	CreateDirs bool   `json:"create_dirs,omitempty"`
}

// WriteCommand creates or overwrites a file inside the workspace. The
// result reports the mutation with before/after content so it can be
// undone.
type WriteCommand struct{}

// NewWriteCommand returns the write command.
func NewWriteCommand() *WriteCommand {
	return &WriteCommand{}
}

// Descriptor implements command.Runner.
func (c *WriteCommand) Descriptor() *command.Descriptor {
	return &command.Descriptor{
		Name:            "write",
		Description:     "Create or overwrite a file in the workspace",
		Version:         "1.0.0",
		Author:          "warden",
		Capabilities:    sandbox.CapabilitySet{sandbox.CapWriteFile},
		SupportsPreview: true,
		SupportsDryRun:  true,
	}
}

// ValidateArgs implements command.Runner.
func (c *WriteCommand) ValidateArgs(raw json.RawMessage) error {
	var args WriteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("parse write args: %w", err)
	}
	if strings.TrimSpace(args.Path) == "" {
		return errors.New("write: path must not be empty")
	}
	return nil
}

// Preview implements command.Runner.
func (c *WriteCommand) Preview(raw json.RawMessage, cmdCtx *command.Context) (*command.Preview, error) {
	var args WriteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse write args: %w", err)
	}
	path, err := c.resolve(args.Path, cmdCtx)
	if err != nil {
		return nil, err
	}
	return &command.Preview{
		CommandID:        cmdCtx.CommandID,
		Description:      fmt.Sprintf("Write %d bytes to %s", len(args.Content), path),
		Actions:          []command.PreviewAction{command.WriteAction(path, args.Content)},
		RequiresApproval: true,
	}, nil
}

// Execute implements command.Runner.
func (c *WriteCommand) Execute(raw json.RawMessage, cmdCtx *command.Context) (*command.Result, error) {
	var args WriteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse write args: %w", err)
	}

	path, err := c.resolve(args.Path, cmdCtx)
	if err != nil {
		return command.Failure(cmdCtx.CommandID, err.Error()), nil
	}

	oldContent, statErr := os.ReadFile(path)
	exists := statErr == nil

	if cmdCtx.DryRun {
		verb := "create"
		if exists {
			verb = "overwrite"
		}
		return &command.Result{
			CommandID: cmdCtx.CommandID,
			Success:   true,
			Output:    fmt.Sprintf("dry run: would %s %s (%d bytes)", verb, path, len(args.Content)),
		}, nil
	}

	if args.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create parent directories: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(args.Content), 0640); err != nil {
		return command.Failure(cmdCtx.CommandID, fmt.Sprintf("write %s: %v", path, err)), nil
	}

	var mutation actionlog.Action
	if exists {
		mutation = actionlog.FileModifiedAction("write", path, oldContent, []byte(args.Content),
			fmt.Sprintf("Modified %s", path))
	} else {
		mutation = actionlog.FileCreatedAction("write", path, []byte(args.Content), fmt.Sprintf("Created %s", path))
	}

	return &command.Result{
		CommandID: cmdCtx.CommandID,
		Success:   true,
		Output:    fmt.Sprintf("wrote %d bytes to %s", len(args.Content), path),
		Mutations: []actionlog.Action{mutation},
	}, nil
}

// resolve makes the path absolute relative to the workspace and, below
// full access, confines it to the workspace.
func (c *WriteCommand) resolve(path string, cmdCtx *command.Context) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cmdCtx.Workspace, path)
	}
	path = filepath.Clean(path)

	if cmdCtx.Sandbox < sandbox.FullAccess && cmdCtx.Workspace != "" {
		ws := filepath.Clean(cmdCtx.Workspace)
		if path != ws && !strings.HasPrefix(path, ws+string(filepath.Separator)) {
			return "", fmt.Errorf("path %s is outside the workspace", path)
		}
	}
	return path, nil
}
