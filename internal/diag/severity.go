package diag

import "strings"

// Severity orders diagnostics. An error rejects the rule source; a warning
// is kept next to the compiled rules and can be promoted by the caller.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{
	SevInfo:    "info",
	SevWarning: "warning",
	SevError:   "error",
}

// String is the header form: "ERROR", "WARNING".
func (s Severity) String() string { return strings.ToUpper(s.Label()) }

// Label is the lower-case form used in short and JSON output.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "unknown"
}

// ParseSeverity reads a label in any case.
func ParseSeverity(s string) (Severity, bool) {
	for i, label := range severityLabels {
		if strings.EqualFold(s, label) {
			return Severity(i), true
		}
	}
	return SevInfo, false
}
