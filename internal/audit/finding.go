package audit

import "fmt"

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Check codes (A200-A299).
const (
	CheckOrphan             = "A201"
	CheckMissingSourcing    = "A202"
	CheckLevelGap           = "A203"
	CheckStructuralMismatch = "A204"
	CheckLifecycleRisk      = "A205"
	CheckCircular           = "A206"
	CheckBlankIdentifier    = "A207"
	CheckSourcingCount      = "A208"
	CheckInternal           = "A299"
)

// Finding is one detected integrity problem. Findings are transient data
// for the report renderer; the auditor never raises them as errors.
type Finding struct {
	// Check is the check code (A2xx).
	Check string `json:"check"`

	Severity Severity `json:"severity"`

	// Key is the location key the finding applies to, when one applies.
	Key string `json:"key,omitempty"`

	// PartID is the implicated part identifier, when one applies.
	PartID string `json:"part_id,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Locations lists every occurrence for multi-location findings
	// (structural mismatch), sorted.
	Locations []string `json:"locations,omitempty"`
}

// String renders a finding for logs and text reports.
func (f Finding) String() string {
	if f.Key != "" {
		return fmt.Sprintf("[%s] %s at %s: %s", f.Check, f.Severity, f.Key, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Check, f.Severity, f.Message)
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	out := make(map[Severity]int)
	for _, f := range findings {
		out[f.Severity]++
	}
	return out
}

// HasErrors reports whether any finding carries SeverityError.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
