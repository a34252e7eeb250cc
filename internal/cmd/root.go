// Package cmd implements the CLI commands for warden.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/clog"
	"github.com/warden-dev/warden/internal/version"
)

var (
	flagConfig    string
	flagWorkspace string
	flagSandbox   string
	flagApproval  string
	flagDebug     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Mediated command execution for AI coding assistants",
	Long: `Warden sits between an AI coding assistant and the machine it works on.

Every operation the assistant requests runs through a pipeline of sandbox
policy checks, previews, interactive approval, and automatic backups, and
every step is written to an append-only audit trail. Mutations are recorded
to a bounded history so they can be undone and redone.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return clog.ConfigureWithDefaults(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "cd", "C", "", "workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagSandbox, "sandbox", "", "sandbox level: read-only, workspace-write, danger-full-access")
	rootCmd.PersistentFlags().StringVar(&flagApproval, "ask-for-approval", "", "approval mode: interactive, policy")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// Execute runs the root command and returns any error.
func Execute() error {
	defer func() { _ = clog.Close() }()
	return rootCmd.Execute()
}
