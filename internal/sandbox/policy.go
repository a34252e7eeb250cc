package sandbox

import (
	"fmt"
	"strings"
)

// Violation reports a policy rejection. It carries enough context for the
// audit trail: the capability or pattern that triggered it and the level
// the check ran under.
type Violation struct {
	// Capability is the capability that was denied, if the rejection came
	// from a capability check.
	Capability Capability

	// Pattern is the matched dangerous or restricted substring, if the
	// rejection came from a command-string screen.
	Pattern string

	// Level is the trust tier the check ran under.
	Level Level

	// Reason is a human-readable explanation.
	Reason string
}

// Error returns the violation reason.
func (v *Violation) Error() string {
	return v.Reason
}

// dangerousPatterns are command substrings that are rejected at every
// sandbox level, including full access. Raising the level never bypasses
// this screen.
var dangerousPatterns = []string{
	"rm -rf",
	"del /s",
	"mkfs",
	"dd if=",
	"fdisk",
	"format",
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"sudo su",
	"su -",
	"chmod 777",
	"chown root",
}

// workspaceEscapePrefixes are command prefixes rejected under
// workspace-write because they move execution outside the workspace.
var workspaceEscapePrefixes = []string{
	"cd /",
	"cd ~",
	"cd ..",
}

// Policy is the capability and command-string enforcement engine. It is
// stateless; all methods are pure functions of their arguments.
type Policy struct{}

// NewPolicy returns a Policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Check reports whether the given capability set may be exercised at the
// given level. It returns nil if allowed, or a *Violation describing the
// first denied capability.
//
// ReadOnly permits only sets that exclude write and shell capabilities.
// WorkspaceWrite permits all capabilities; workspace confinement for it
// is enforced on command strings via CheckShellCommand, not on the
// capability set. FullAccess imposes no capability restriction.
func (p *Policy) Check(caps CapabilitySet, level Level) error {
	for _, c := range caps {
		if allowedAt(c, level) {
			continue
		}
		return &Violation{
			Capability: c,
			Level:      level,
			Reason:     fmt.Sprintf("capability %s is not allowed under the %s sandbox level", c, level),
		}
	}
	return nil
}

// Allowed is a convenience wrapper over Check returning a bool.
func (p *Policy) Allowed(caps CapabilitySet, level Level) bool {
	return p.Check(caps, level) == nil
}

func allowedAt(c Capability, level Level) bool {
	switch level {
	case ReadOnly:
		return c != CapWriteFile && c != CapExecuteShell
	case WorkspaceWrite, FullAccess:
		return true
	default:
		return false
	}
}

// CheckShellCommand screens a shell command string. The dangerous-pattern
// screen runs first and applies unconditionally: no sandbox level bypasses
// it. The remaining checks depend on the level: read-only rejects all
// shell execution, workspace-write rejects commands that would escape the
// workspace.
func (p *Policy) CheckShellCommand(cmd string, level Level) error {
	lowered := strings.ToLower(cmd)
	for _, pat := range dangerousPatterns {
		if strings.Contains(lowered, pat) {
			return &Violation{
				Pattern: pat,
				Level:   level,
				Reason:  fmt.Sprintf("dangerous command pattern %q detected", pat),
			}
		}
	}

	switch level {
	case ReadOnly:
		return &Violation{
			Capability: CapExecuteShell,
			Level:      level,
			Reason:     "shell execution is not allowed under the read-only sandbox level",
		}
	case WorkspaceWrite:
		for _, prefix := range workspaceEscapePrefixes {
			if strings.HasPrefix(strings.TrimSpace(cmd), prefix) {
				return &Violation{
					Pattern: prefix,
					Level:   level,
					Reason:  fmt.Sprintf("command %q is restricted to the workspace under workspace-write", prefix),
				}
			}
		}
	}
	return nil
}
