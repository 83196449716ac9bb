// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Violation severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single validation failure
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Details  string `json:"details"`

	// Location of the failure inside the checked artifact
	Category string `json:"category,omitempty"`
	UnitType string `json:"unit_type,omitempty"`
	Field    string `json:"field,omitempty"`
	Line     *int   `json:"line,omitempty"`

	// Measured/Limit carry the observed value and the configured bound so
	// the message is self-explanatory downstream
	Measured *int `json:"measured,omitempty"`
	Limit    *int `json:"limit,omitempty"`
}

// Violations represents a collection of validation failures
type Violations struct {
	Violations []Violation `json:"violations"`
}

// Errors returns only the blocking (error severity) violations.
func (v *Violations) Errors() []Violation {
	var out []Violation
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			out = append(out, violation)
		}
	}
	return out
}

// Warnings returns only the advisory (warning severity) violations.
func (v *Violations) Warnings() []Violation {
	var out []Violation
	for _, violation := range v.Violations {
		if violation.Severity == SeverityWarning {
			out = append(out, violation)
		}
	}
	return out
}
