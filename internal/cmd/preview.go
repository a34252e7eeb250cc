package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <command> [json-args]",
	Short: "Show what a command would do without running it",
	Long: `Show the actions a command would take, as JSON, without executing
anything. No approval is requested, no backup is taken, and nothing is
written except the audit trail.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rawArgs := json.RawMessage("{}")
	if len(args) == 2 {
		rawArgs = json.RawMessage(args[1])
	}

	cmdCtx := a.cmdContext(cmd.Context())
	cmdCtx.PreviewOnly = true

	result, err := a.engine.Execute(args[0], rawArgs, cmdCtx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Output)
	if !result.Success {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", result.Error)
		return NewExitCodeError(1)
	}
	return nil
}
