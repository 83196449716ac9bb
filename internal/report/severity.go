package report

import (
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

// severityKey addresses one entry of the final-severity lookup table.
// Lookups fall back from most to least specific: (category, rule, field),
// then (category, rule), then (rule) alone.
type severityKey struct {
	Category string
	Rule     string
	Field    string
}

// severityTable assigns final report severities per finding. Anything not
// listed falls back to a default derived from the original violation
// severity.
var severityTable = map[severityKey]string{
	{Category: types.FindingStructure, Rule: validation.RuleMissingField}:    types.ReportSeverityCritical,
	{Category: types.FindingStructure, Rule: validation.RuleUnknownUnitType}: types.ReportSeverityCritical,
	{Category: types.FindingStructure, Rule: validation.RuleTooManyLines}:    types.ReportSeverityHigh,
	{Category: types.FindingStructure, Rule: validation.RuleLineTooLong}:     types.ReportSeverityLow,

	{Category: types.FindingContent, Rule: validation.RuleMissingMarker}: types.ReportSeverityMedium,
	{Category: types.FindingContent, Rule: validation.RuleDuration}:      types.ReportSeverityLow,

	// Title truncation reads worse than body truncation on a slide.
	{Category: types.FindingContent, Rule: validation.RuleAboveMaxWords, Field: "title"}: types.ReportSeverityMedium,

	{Category: types.FindingDistribution, Rule: ruleQuotaBelowMinimum}: types.ReportSeverityHigh,
	{Category: types.FindingDistribution, Rule: ruleQuotaOutsideTarget}: types.ReportSeverityLow,
	{Category: types.FindingDistribution, Rule: ruleExerciseDiversity}:  types.ReportSeverityLow,
	{Category: types.FindingDistribution, Rule: ruleUnderPopulated}:     types.ReportSeverityMedium,

	{Category: types.FindingStructure, Rule: ruleGateAutoFail}: types.ReportSeverityCritical,
}

// finalSeverity resolves a finding's report severity from the lookup table,
// falling back to the original violation severity (error maps to high,
// anything else to low).
func finalSeverity(category, rule, field, original string) string {
	keys := []severityKey{
		{Category: category, Rule: rule, Field: field},
		{Category: category, Rule: rule},
		{Rule: rule},
	}
	for _, key := range keys {
		if severity, ok := severityTable[key]; ok {
			return severity
		}
	}
	if original == types.SeverityError {
		return types.ReportSeverityHigh
	}
	return types.ReportSeverityLow
}

// categoryForRule buckets a rule type into the reporter's fixed categories.
func categoryForRule(rule string) string {
	switch rule {
	case validation.RuleMissingField, validation.RuleTooManyLines,
		validation.RuleLineTooLong, validation.RuleUnknownUnitType, ruleGateAutoFail:
		return types.FindingStructure
	case ruleQuotaBelowMinimum, ruleQuotaOutsideTarget, ruleExerciseDiversity, ruleUnderPopulated:
		return types.FindingDistribution
	default:
		return types.FindingContent
	}
}
