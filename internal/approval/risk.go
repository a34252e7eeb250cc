// Package approval decides whether a previewed command may proceed.
// Decisions come either from configured policy or from an interactive
// yes/no prompt; every request carries a risk classification that the
// policy keys off.
package approval

import "strings"

// Risk grades how much damage an operation could do. Ordered: a higher
// value is riskier.
type Risk int

// Risk levels.
const (
	RiskLow Risk = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r Risk) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Substrings that bump a shell command to high risk. The truly
// destructive ones are already blocked outright by the sandbox screen;
// these are the ones worth a human look.
var highRiskShell = []string{
	"rm ", "rmdir", "mv ", "chmod", "chown", "kill ", "pkill",
	"curl ", "wget ", "git push", "git reset --hard",
}

var mediumRiskShell = []string{
	"git ", "npm ", "pip ", "cargo ", "go install", "make ",
}

// ClassifyShell grades a shell command string.
func ClassifyShell(cmd string) Risk {
	lower := strings.ToLower(cmd)
	if strings.Contains(lower, "sudo") {
		return RiskCritical
	}
	for _, s := range highRiskShell {
		if strings.Contains(lower, s) {
			return RiskHigh
		}
	}
	for _, s := range mediumRiskShell {
		if strings.Contains(lower, s) {
			return RiskMedium
		}
	}
	return RiskMedium // arbitrary shell is never low risk
}

// ClassifyFileWrite grades a file write. Overwriting existing content
// is riskier than creating a new file.
func ClassifyFileWrite(exists bool) Risk {
	if exists {
		return RiskMedium
	}
	return RiskLow
}

// ClassifyNetwork grades a network access by URL scheme.
func ClassifyNetwork(url string) Risk {
	if strings.HasPrefix(url, "https://") {
		return RiskLow
	}
	return RiskMedium
}
