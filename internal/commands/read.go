package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/sandbox"
)

// ReadArgs are the arguments for the read command.
type ReadArgs struct {
	Path string `json:"path"`
}

// ReadCommand reads a file and returns its content.
type ReadCommand struct{}

// NewReadCommand returns the read command.
func NewReadCommand() *ReadCommand {
	return &ReadCommand{}
}

// Descriptor implements command.Runner.
func (c *ReadCommand) Descriptor() *command.Descriptor {
	return &command.Descriptor{
		Name:            "read",
		Description:     "Read a file",
		Version:         "1.0.0",
		Author:          "warden",
		Capabilities:    sandbox.CapabilitySet{sandbox.CapReadFile},
		SupportsPreview: true,
		SupportsDryRun:  false,
	}
}

// ValidateArgs implements command.Runner.
func (c *ReadCommand) ValidateArgs(raw json.RawMessage) error {
	var args ReadArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("parse read args: %w", err)
	}
	if strings.TrimSpace(args.Path) == "" {
		return errors.New("read: path must not be empty")
	}
	return nil
}

// Preview implements command.Runner.
func (c *ReadCommand) Preview(raw json.RawMessage, cmdCtx *command.Context) (*command.Preview, error) {
	var args ReadArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse read args: %w", err)
	}
	return &command.Preview{
		CommandID:        cmdCtx.CommandID,
		Description:      fmt.Sprintf("Read %s", args.Path),
		Actions:          []command.PreviewAction{command.ReadAction(args.Path)},
		RequiresApproval: false,
	}, nil
}

// Execute implements command.Runner.
func (c *ReadCommand) Execute(raw json.RawMessage, cmdCtx *command.Context) (*command.Result, error) {
	var args ReadArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse read args: %w", err)
	}

	path := args.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cmdCtx.Workspace, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return command.Failure(cmdCtx.CommandID, fmt.Sprintf("read %s: %v", path, err)), nil
	}

	return &command.Result{
		CommandID: cmdCtx.CommandID,
		Success:   true,
		Output:    string(data),
	}, nil
}
