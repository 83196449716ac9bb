// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Report severities, ordered weakest to strongest.
const (
	ReportSeverityLow      = "low"
	ReportSeverityMedium   = "medium"
	ReportSeverityHigh     = "high"
	ReportSeverityCritical = "critical"
)

// Finding categories used by the reporter.
const (
	FindingStructure    = "structure"
	FindingContent      = "content"
	FindingDistribution = "distribution"
)

// ActionItem is one deduplicated remediation entry: all findings of one rule
// type collapsed into a single actionable description with the locations it
// affects and a static checklist for fixing that class of problem.
type ActionItem struct {
	Rule      string   `json:"rule"`
	Category  string   `json:"category"`
	Severity  string   `json:"severity"`
	Action    string   `json:"action"`
	Locations []string `json:"locations"`
	Checklist []string `json:"checklist,omitempty"`
	Count     int      `json:"count"`
}

// Report is the prioritized remediation summary handed back to the
// generation stage after a failed or warned gate.
type Report struct {
	GeneratedAt             time.Time    `json:"generated_at"`
	TotalFindings           int          `json:"total_findings"`
	OverallSeverity         string       `json:"overall_severity"`
	RequiresImmediateAction bool         `json:"requires_immediate_action"`
	ActionItems             []ActionItem `json:"action_items"`
}

// severityRank orders report severities for max comparisons.
var severityRank = map[string]int{
	ReportSeverityLow:      1,
	ReportSeverityMedium:   2,
	ReportSeverityHigh:     3,
	ReportSeverityCritical: 4,
}

// SeverityRank returns the ordering rank of a report severity, 0 if unknown.
func SeverityRank(severity string) int {
	return severityRank[severity]
}

// MaxSeverity returns the stronger of two report severities.
func MaxSeverity(a, b string) string {
	if SeverityRank(b) > SeverityRank(a) {
		return b
	}
	return a
}
