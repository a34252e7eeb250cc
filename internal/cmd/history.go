package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded mutation history",
	Long: `Show the recorded mutation history in chronological order.

Entries above the cursor marker have been applied and can be undone;
entries below it have been undone and can be redone.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	log := a.engine.ActionLog()
	actions := log.History()
	if len(actions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded mutations.")
		return nil
	}

	cursor := log.Cursor()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTIME\tCOMMAND\tDESCRIPTION")
	for i, action := range actions {
		marker := " "
		if i >= cursor {
			marker = "*" // undone, pending redo
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			marker,
			action.Timestamp.Local().Format("2006-01-02 15:04:05"),
			action.Command,
			action.Description,
		)
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d to undo, %d to redo\n", log.CanUndoCount(), log.CanRedoCount())
	return nil
}
