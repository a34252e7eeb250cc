package approval

import (
	"context"
	"fmt"
	"strings"

	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/prompt"
)

// Decision is the outcome of an approval request.
type Decision int

// Decisions.
const (
	Rejected Decision = iota
	Approved
)

func (d Decision) String() string {
	if d == Approved {
		return "approved"
	}
	return "rejected"
}

// Request describes the operation awaiting a decision.
type Request struct {
	CommandName string
	Risk        Risk
	Reason      string
}

// Handler decides whether a previewed command may proceed. The context
// bounds how long a handler may wait for an answer; no timeout is
// imposed here.
type Handler interface {
	Decide(ctx context.Context, preview *command.Preview, req *Request) (Decision, error)
}

// PolicyHandler decides without user interaction: low-risk operations
// are approved when configured to be, everything else is rejected.
// This is the handler for non-interactive sessions.
type PolicyHandler struct {
	AutoApproveLowRisk bool
}

// Decide applies the configured policy.
func (h *PolicyHandler) Decide(_ context.Context, _ *command.Preview, req *Request) (Decision, error) {
	if h.AutoApproveLowRisk && req.Risk == RiskLow {
		return Approved, nil
	}
	return Rejected, nil
}

// AutoApprover approves every request. It backs an explicit
// "yes to everything" switch; sandbox policy checks still apply before
// any approval is consulted.
type AutoApprover struct{}

// Decide always approves.
func (AutoApprover) Decide(_ context.Context, _ *command.Preview, _ *Request) (Decision, error) {
	return Approved, nil
}

// InteractiveHandler asks the user. Low-risk operations may still be
// auto-approved without a prompt.
type InteractiveHandler struct {
	Prompter           prompt.YesNoPrompter
	AutoApproveLowRisk bool
}

// Decide shows the operation, its risk, and the previewed actions, then
// asks for confirmation. Cancellation of ctx aborts the wait.
func (h *InteractiveHandler) Decide(ctx context.Context, preview *command.Preview, req *Request) (Decision, error) {
	if h.AutoApproveLowRisk && req.Risk == RiskLow {
		return Approved, nil
	}

	type answer struct {
		yes bool
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		yes, err := h.Prompter.PromptYesNo(formatRequest(preview, req), false)
		ch <- answer{yes, err}
	}()

	select {
	case <-ctx.Done():
		return Rejected, ctx.Err()
	case a := <-ch:
		if a.err != nil {
			return Rejected, fmt.Errorf("reading approval: %w", a.err)
		}
		if a.yes {
			return Approved, nil
		}
		return Rejected, nil
	}
}

func formatRequest(preview *command.Preview, req *Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command %q requests approval (risk: %s)\n", req.CommandName, req.Risk)
	if req.Reason != "" {
		fmt.Fprintf(&b, "  reason: %s\n", req.Reason)
	}
	if preview != nil {
		for _, a := range preview.Actions {
			switch a.Kind {
			case command.PreviewShell:
				fmt.Fprintf(&b, "  shell: %s\n", a.Command)
			case command.PreviewWrite:
				fmt.Fprintf(&b, "  write: %s (%d bytes)\n", a.Path, len(a.Content))
			case command.PreviewRead:
				fmt.Fprintf(&b, "  read:  %s\n", a.Path)
			}
		}
	}
	b.WriteString("Proceed? [y/N] ")
	return b.String()
}
