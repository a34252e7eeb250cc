package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the warden version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "warden %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
