package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/engine"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent recorded mutation",
	Long: `Undo the most recent mutation in the history, restoring the file
to its prior state. Undone mutations can be reapplied with 'warden redo'
until a new mutation is recorded.`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Reapply the most recently undone mutation",
	Args:  cobra.NoArgs,
	RunE:  runRedo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(redoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	action, err := a.engine.Undo(cmd.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNothingToUndo) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo.")
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Undid: %s\n", action.Description)
	return nil
}

func runRedo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	action, err := a.engine.Redo(cmd.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNothingToRedo) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to redo.")
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Redid: %s\n", action.Description)
	return nil
}
