package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// RealExecutor executes commands using os/exec.
type RealExecutor struct{}

// NewRealExecutor creates a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

// Execute runs the request under `sh -c` and returns the result. When
// the context is cancelled or the timeout elapses the child process is
// killed; the response distinguishes the two.
func (e *RealExecutor) Execute(ctx context.Context, req Request) Response {
	// A separate timeout context lets us tell a deadline apart from a
	// caller-initiated cancel.
	runCtx := ctx
	var timeoutCtx context.Context
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
		runCtx = timeoutCtx
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", req.Command)

	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}

	if len(req.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range req.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return Response{
				ExitCode:  -1,
				Stdout:    stdout.String(),
				Stderr:    stderr.String(),
				Cancelled: true,
				Error:     "command cancelled",
			}
		case timeoutCtx != nil && errors.Is(timeoutCtx.Err(), context.DeadlineExceeded):
			return Response{
				ExitCode: -1,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				TimedOut: true,
				Error:    "command timed out",
			}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Ran to completion with a non-zero exit.
			return Response{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}

		return Response{
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Error:    err.Error(),
		}
	}

	return Response{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}
