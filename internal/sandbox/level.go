package sandbox

import "fmt"

// Level is an ordered trust tier gating which capabilities may be
// exercised. Higher levels permit everything lower levels do.
type Level int

// Trust tiers, from most to least restrictive.
const (
	ReadOnly Level = iota
	WorkspaceWrite
	FullAccess
)

// DefaultLevel is the tier used when none is configured.
const DefaultLevel = WorkspaceWrite

// String returns the canonical spelling used in configuration and flags.
func (l Level) String() string {
	switch l {
	case ReadOnly:
		return "read-only"
	case WorkspaceWrite:
		return "workspace-write"
	case FullAccess:
		return "full-access"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a flag or config spelling into a Level.
// "danger-full-access" is the CLI spelling for FullAccess; the prefix
// exists to make the choice deliberate.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "read-only":
		return ReadOnly, nil
	case "workspace-write":
		return WorkspaceWrite, nil
	case "full-access", "danger-full-access":
		return FullAccess, nil
	default:
		return DefaultLevel, fmt.Errorf("unknown sandbox level %q (expected read-only, workspace-write, or danger-full-access)", s)
	}
}
