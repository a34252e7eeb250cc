package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/engine"
)

var (
	flagDryRun bool
	flagYes    bool
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [json-args]",
	Short: "Run a command through the mediation pipeline",
	Long: `Run a registered command through the full mediation pipeline.

Arguments are passed as a single JSON object. The command is checked
against the sandbox policy, previewed, gated on approval when risky,
and backed up before it mutates anything. Examples:

  warden exec read '{"path": "main.go"}'
  warden exec write '{"path": "notes.txt", "content": "hello"}'
  warden exec run '{"command": "go test ./..."}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExec,
}

func init() {
	execCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "go through the pipeline without touching anything")
	execCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "approve every request without asking")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
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
	cmdCtx.DryRun = flagDryRun

	result, err := a.engine.Execute(args[0], rawArgs, cmdCtx)
	if err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
			return NewExitCodeError(130)
		}
		return err
	}

	if result.Output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Output)
	}
	if !result.Success {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", result.Error)
		return NewExitCodeError(1)
	}
	return nil
}
