package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List registered commands",
	Long: `List every registered command with its required sandbox level and
capabilities. A command only runs when the active sandbox level is at
least its required level.`,
	Aliases: []string{"list"},
	Args:    cobra.NoArgs,
	RunE:    runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

func runCommands(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLEVEL\tCAPABILITIES\tDESCRIPTION")
	for _, name := range a.registry.Names() {
		runner, err := a.registry.Get(name)
		if err != nil {
			return err
		}
		desc := runner.Descriptor()
		caps := strings.Join(desc.Capabilities.Strings(), ",")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", desc.Name, desc.RequiredLevel, caps, desc.Description)
	}
	w.Flush()
	return nil
}
