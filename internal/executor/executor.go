// Package executor runs shell commands on the host, with timeout and
// cancellation handling. It performs no policy checks of its own; the
// sandbox screen happens before a request ever reaches it.
package executor

import (
	"context"
	"time"
)

// Executor runs commands on the host system.
type Executor interface {
	Execute(ctx context.Context, req Request) Response
}

// Request contains the command execution parameters. Command is passed
// to `sh -c` verbatim.
type Request struct {
	Command string            `json:"command"`
	Workdir string            `json:"workdir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty"`
}

// Response contains the result of command execution. A non-zero exit
// code is a completed response, not an error; TimedOut and Cancelled
// mark the two ways a run can be cut short.
type Response struct {
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	TimedOut  bool   `json:"timed_out,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     string `json:"error,omitempty"`
}
