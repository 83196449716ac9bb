// Package report turns validation, quota, and gate findings into a
// prioritized remediation report for the generation stage.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/lesson-factory/internal/report/checklists"
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

// Rule identifiers the reporter emits for findings that do not originate in
// the constraint validator.
const (
	ruleQuotaBelowMinimum  = "quota_below_minimum"
	ruleQuotaOutsideTarget = "quota_outside_target"
	ruleExerciseDiversity  = "exercise_diversity"
	ruleUnderPopulated     = "under_populated_category"
	ruleGateAutoFail       = "gate_auto_fail"
)

// finding is one categorized, severity-resolved entry awaiting grouping.
type finding struct {
	Rule     string
	Category string // structure | content | distribution
	Severity string
	Location string
	Details  string
}

// Build assembles the remediation report from every source of findings:
// constraint violations, quota results, and gate results. Findings are
// grouped by rule type into deduplicated action items; overall severity is
// the maximum across findings.
func Build(violations []types.Violation, quotas []*types.QuotaResult, gates []*types.GateResult) (*types.Report, error) {
	var findings []finding

	for _, v := range violations {
		category := categoryForRule(v.Rule)
		findings = append(findings, finding{
			Rule:     v.Rule,
			Category: category,
			Severity: finalSeverity(category, v.Rule, v.Field, v.Severity),
			Location: violationLocation(v),
			Details:  v.Details,
		})
	}

	for _, q := range quotas {
		if q == nil {
			continue
		}
		findings = append(findings, quotaFindings(q)...)
	}

	for _, g := range gates {
		if g == nil {
			continue
		}
		for _, autoFail := range g.AutoFails {
			findings = append(findings, finding{
				Rule:     ruleGateAutoFail,
				Category: types.FindingStructure,
				Severity: finalSeverity(types.FindingStructure, ruleGateAutoFail, "", types.SeverityError),
				Location: g.Category,
				Details:  autoFail,
			})
		}
	}

	items, err := groupIntoActionItems(findings)
	if err != nil {
		return nil, err
	}

	overall := ""
	for _, f := range findings {
		overall = types.MaxSeverity(overall, f.Severity)
	}

	return &types.Report{
		GeneratedAt:     time.Now().UTC(),
		TotalFindings:   len(findings),
		OverallSeverity: overall,
		RequiresImmediateAction: types.SeverityRank(overall) >=
			types.SeverityRank(types.ReportSeverityHigh),
		ActionItems: items,
	}, nil
}

// quotaFindings converts one quota result into report findings.
func quotaFindings(q *types.QuotaResult) []finding {
	var findings []finding
	switch q.Status {
	case types.StatusFail:
		findings = append(findings, finding{
			Rule:     ruleQuotaBelowMinimum,
			Category: types.FindingDistribution,
			Severity: finalSeverity(types.FindingDistribution, ruleQuotaBelowMinimum, "", types.SeverityError),
			Location: q.Category,
			Details: fmt.Sprintf("Deck of %d slides has %d special slides, needs %d more to reach the minimum of %d",
				q.DeckSize, q.Special, q.Deficit, q.Minimum),
		})
	case types.StatusWarn:
		findings = append(findings, finding{
			Rule:     ruleQuotaOutsideTarget,
			Category: types.FindingDistribution,
			Severity: finalSeverity(types.FindingDistribution, ruleQuotaOutsideTarget, "", types.SeverityWarning),
			Location: q.Category,
			Details: fmt.Sprintf("Deck of %d slides has %d special slides, target range is %d-%d",
				q.DeckSize, q.Special, q.TargetMin, q.TargetMax),
		})
	}
	for _, advisory := range q.Advisories {
		findings = append(findings, finding{
			Rule:     ruleExerciseDiversity,
			Category: types.FindingDistribution,
			Severity: finalSeverity(types.FindingDistribution, ruleExerciseDiversity, "", types.SeverityWarning),
			Location: q.Category,
			Details:  advisory,
		})
	}
	return findings
}

// groupIntoActionItems collapses findings sharing a rule type into one
// action item each, ordered by severity then rule for stable output.
func groupIntoActionItems(findings []finding) ([]types.ActionItem, error) {
	grouped := make(map[string][]finding)
	for _, f := range findings {
		grouped[f.Rule] = append(grouped[f.Rule], f)
	}

	items := make([]types.ActionItem, 0, len(grouped))
	for rule, group := range grouped {
		checklist, err := checklists.ForRule(rule)
		if err != nil {
			return nil, fmt.Errorf("failed to load checklist for %s: %w", rule, err)
		}

		severity := ""
		locations := make([]string, 0, len(group))
		seen := make(map[string]bool)
		for _, f := range group {
			severity = types.MaxSeverity(severity, f.Severity)
			if f.Location != "" && !seen[f.Location] {
				seen[f.Location] = true
				locations = append(locations, f.Location)
			}
		}
		sort.Strings(locations)

		items = append(items, types.ActionItem{
			Rule:      rule,
			Category:  group[0].Category,
			Severity:  severity,
			Action:    actionDescription(rule, len(group)),
			Locations: locations,
			Checklist: checklist,
			Count:     len(group),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if types.SeverityRank(items[i].Severity) != types.SeverityRank(items[j].Severity) {
			return types.SeverityRank(items[i].Severity) > types.SeverityRank(items[j].Severity)
		}
		return items[i].Rule < items[j].Rule
	})

	return items, nil
}

// actionDescription renders the human action line for one rule group.
func actionDescription(rule string, count int) string {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	switch rule {
	case validation.RuleMissingField:
		return fmt.Sprintf("Add the %d missing required field%s", count, plural)
	case validation.RuleUnknownUnitType:
		return "Correct the declared unit type to one the limits table recognizes"
	case validation.RuleTooManyLines:
		return fmt.Sprintf("Condense %d field%s exceeding the line budget", count, plural)
	case validation.RuleLineTooLong:
		return fmt.Sprintf("Shorten %d overlong line%s", count, plural)
	case validation.RuleBelowMinWords:
		return fmt.Sprintf("Expand %d field%s below the word minimum", count, plural)
	case validation.RuleAboveMaxWords:
		return fmt.Sprintf("Trim %d field%s above the word maximum", count, plural)
	case validation.RuleMissingMarker:
		return fmt.Sprintf("Add the required pacing markers in %d field%s", count, plural)
	case validation.RuleDuration:
		return fmt.Sprintf("Fix %d declared duration%s outside the allowed range", count, plural)
	case ruleQuotaBelowMinimum:
		return "Add special slides until the deck meets its band minimum"
	case ruleQuotaOutsideTarget:
		return "Rebalance special slides toward the band's target range"
	case ruleExerciseDiversity:
		return "Vary the exercise slide variants"
	case ruleUnderPopulated:
		return "Review category assignment coverage with a reviewer"
	case ruleGateAutoFail:
		return fmt.Sprintf("Resolve %d blocking gate condition%s", count, plural)
	default:
		return fmt.Sprintf("Resolve %d %s finding%s", count, strings.ReplaceAll(rule, "_", " "), plural)
	}
}

// violationLocation renders a stable location reference for one violation.
func violationLocation(v types.Violation) string {
	parts := make([]string, 0, 3)
	if v.Category != "" {
		parts = append(parts, v.Category)
	}
	if v.UnitType != "" {
		parts = append(parts, v.UnitType)
	}
	if v.Field != "" {
		parts = append(parts, v.Field)
	}
	location := strings.Join(parts, "/")
	if v.Line != nil {
		location = fmt.Sprintf("%s:%d", location, *v.Line)
	}
	return location
}
