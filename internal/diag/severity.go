package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics from informational to fatal.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// String is the upper-case form used in pretty output.
func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}

// Label is the lower-case form used by short, JSON and SARIF output.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// ParseSeverity reads a --min-severity style value.
func ParseSeverity(s string) (Severity, error) {
	s = strings.TrimSpace(s)
	for sev := SevInfo; sev <= SevError; sev++ {
		if strings.EqualFold(s, severityNames[sev]) {
			return sev, nil
		}
	}
	return SevInfo, fmt.Errorf("invalid severity %q (expected info|warning|error)", s)
}
