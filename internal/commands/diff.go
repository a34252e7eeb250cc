package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/sandbox"
)

// DiffArgs are the arguments for the diff command. Left and Right are
// either inline texts or file paths, depending on IsFilePath.
type DiffArgs struct {
	Left         string `json:"left"`
	Right        string `json:"right"`
	IsFilePath   bool   `json:"is_file_path,omitempty"`
	ContextLines int    `json:"context_lines,omitempty"`
}

// DiffCommand produces a unified diff of two texts or files. It reads
// at most, so it never needs approval.
type DiffCommand struct{}

// NewDiffCommand returns the diff command.
func NewDiffCommand() *DiffCommand {
	return &DiffCommand{}
}

// Descriptor implements command.Runner.
func (c *DiffCommand) Descriptor() *command.Descriptor {
	return &command.Descriptor{
		Name:            "diff",
		Description:     "Show a unified diff of two texts or files",
		Version:         "1.0.0",
		Author:          "warden",
		Capabilities:    sandbox.CapabilitySet{sandbox.CapReadFile},
		SupportsPreview: true,
		SupportsDryRun:  false,
	}
}

// ValidateArgs implements command.Runner.
func (c *DiffCommand) ValidateArgs(raw json.RawMessage) error {
	var args DiffArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return fmt.Errorf("parse diff args: %w", err)
	}
	if args.IsFilePath && (args.Left == "" || args.Right == "") {
		return errors.New("diff: both file paths must be set")
	}
	if args.ContextLines < 0 {
		return errors.New("diff: context_lines must not be negative")
	}
	return nil
}

// Preview implements command.Runner.
func (c *DiffCommand) Preview(raw json.RawMessage, cmdCtx *command.Context) (*command.Preview, error) {
	var args DiffArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse diff args: %w", err)
	}

	p := &command.Preview{
		CommandID:        cmdCtx.CommandID,
		Description:      "Compute a unified diff",
		RequiresApproval: false,
	}
	if args.IsFilePath {
		p.Actions = []command.PreviewAction{
			command.ReadAction(args.Left),
			command.ReadAction(args.Right),
		}
	}
	return p, nil
}

// Execute implements command.Runner.
func (c *DiffCommand) Execute(raw json.RawMessage, cmdCtx *command.Context) (*command.Result, error) {
	var args DiffArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse diff args: %w", err)
	}

	left, right := args.Left, args.Right
	fromFile, toFile := "a", "b"
	if args.IsFilePath {
		leftData, err := os.ReadFile(args.Left)
		if err != nil {
			return command.Failure(cmdCtx.CommandID, fmt.Sprintf("read %s: %v", args.Left, err)), nil
		}
		rightData, err := os.ReadFile(args.Right)
		if err != nil {
			return command.Failure(cmdCtx.CommandID, fmt.Sprintf("read %s: %v", args.Right, err)), nil
		}
		left, right = string(leftData), string(rightData)
		fromFile, toFile = args.Left, args.Right
	}

	context := args.ContextLines
	if context == 0 {
		context = 3
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(left),
		B:        difflib.SplitLines(right),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  context,
	})
	if err != nil {
		return nil, fmt.Errorf("compute diff: %w", err)
	}

	return &command.Result{
		CommandID: cmdCtx.CommandID,
		Success:   true,
		Output:    text,
	}, nil
}
