// Package sandbox classifies what a command is allowed to do. A command
// declares the capabilities it needs; the policy decides whether a given
// trust level permits that set, and screens shell command strings for
// patterns that are never acceptable.
package sandbox

// Capability is a named permission a command declares it needs.
type Capability string

// Capabilities a command may declare.
const (
	CapReadFile      Capability = "read-file"
	CapWriteFile     Capability = "write-file"
	CapExecuteShell  Capability = "execute-shell"
	CapNetworkAccess Capability = "network-access"
)

// CapabilitySet is an ordered list of capabilities. Order is not
// significant for policy checks; it is preserved for display.
type CapabilitySet []Capability

// Contains returns true if the set includes the given capability.
func (s CapabilitySet) Contains(c Capability) bool {
	for _, have := range s {
		if have == c {
			return true
		}
	}
	return false
}

// Strings returns the capabilities as plain strings, for audit details.
func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}
