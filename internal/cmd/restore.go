package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore files from a backup snapshot",
	Long: `Restore every file in a backup snapshot to its original location.
Use 'warden backups' to find the snapshot id.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backup snapshots",
	Long: `List all backup snapshots, oldest first.

Each snapshot was taken before a mutating command ran and can be
restored with 'warden restore <id>'.`,
	Aliases: []string{"ls-backups"},
	Args:    cobra.NoArgs,
	RunE:    runBackups,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(backupsCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid backup id %q: %w", args[0], err)
	}

	if err := a.engine.Rollback(id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Restored backup %s\n", id)
	return nil
}

func runBackups(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	infos, err := a.backups.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No backups.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCOMMAND\tFILES")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			info.ID,
			info.Timestamp.Local().Format(time.RFC3339),
			info.CommandID,
			len(info.Files),
		)
	}
	w.Flush()
	return nil
}
