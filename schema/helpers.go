package schema

import (
	"strings"
)

// Ordinal returns the rank of a severity, from 1 for INFO up to 5 for BLOCKER.
// Unknown severities rank 0.
func (s Severity) Ordinal() int {
	for i, known := range AllSeverities {
		if known == s {
			return i + 1
		}
	}
	return 0
}

// ParseSeverity normalizes user input such as "critical" into a Severity.
// The second value is false when the input names no known severity.
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Ordinal() > 0
}

// SeveritiesAtLeast returns every severity whose rank is greater or equal to min,
// lowest first.
func SeveritiesAtLeast(min Severity) []Severity {
	var out []Severity
	for _, s := range AllSeverities {
		if s.Ordinal() >= min.Ordinal() {
			out = append(out, s)
		}
	}
	return out
}

// JoinSeverities renders severities as the comma-separated list the API expects.
func JoinSeverities(severities []Severity) string {
	parts := make([]string, len(severities))
	for i, s := range severities {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// GateLabel returns the human label of a quality gate status.
func GateLabel(status GateStatus) string {
	switch status {
	case GateOK:
		return "PASSED"
	case GateWarn:
		return "WARNING"
	default:
		return "FAILED"
	}
}
