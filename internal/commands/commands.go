// Package commands ships the builtin command set: run, diff, write,
// and read. Each runner implements command.Runner and is wired into a
// registry at startup.
package commands

import (
	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/executor"
	"github.com/warden-dev/warden/internal/sandbox"
)

// RegisterBuiltins registers the builtin command set.
func RegisterBuiltins(reg *command.Registry, exec executor.Executor, policy *sandbox.Policy) error {
	runners := []command.Runner{
		NewRunCommand(exec, policy),
		NewDiffCommand(),
		NewWriteCommand(),
		NewReadCommand(),
	}
	for _, r := range runners {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}
