// Package gate aggregates validation findings into a weighted quality score
// with automatic-fail overrides.
package gate

import (
	"fmt"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

// Error represents a gate evaluation failure (bad configuration or input),
// distinct from a FAIL result.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gate error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("gate error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Input carries one section's findings into a gate evaluation.
type Input struct {
	Category   string
	Violations []types.Violation
	Quota      *types.QuotaResult
	// UnderPopulated marks the section's category as below its minimum item
	// population, which scores against the coverage dimension.
	UnderPopulated bool
}

// Dimension names used by the rule-to-dimension mapping. These must appear
// in the ruleset's gate dimensions for their findings to carry weight.
const (
	DimStructure    = "structure"
	DimContent      = "content"
	DimDistribution = "distribution"
	DimCoverage     = "coverage"
)

// dimensionForRule routes each violation class to the dimension it scores
// against. Unknown rules count against content.
func dimensionForRule(rule string) string {
	switch rule {
	case validation.RuleMissingField, validation.RuleTooManyLines,
		validation.RuleLineTooLong, validation.RuleUnknownUnitType:
		return DimStructure
	case validation.RuleBelowMinWords, validation.RuleAboveMaxWords,
		validation.RuleMissingMarker, validation.RuleDuration:
		return DimContent
	default:
		return DimContent
	}
}

// Score evaluates one section against the gate spec. Automatic-fail
// conditions are checked before the weighted total is trusted: any triggered
// condition forces FAIL regardless of the score. Dimension scores are
// deductive rubrics starting at 100 with per-class penalties, floored at 0.
func Score(in Input, rs *config.Ruleset) (*types.GateResult, error) {
	spec := rs.Gate
	if len(spec.Dimensions) == 0 {
		return nil, &Error{Message: "gate spec declares no dimensions"}
	}

	byDimension := make(map[string][]types.Violation)
	for _, v := range in.Violations {
		dim := dimensionForRule(v.Rule)
		byDimension[dim] = append(byDimension[dim], v)
	}
	if in.Quota != nil {
		for _, qv := range quotaViolations(in.Quota) {
			byDimension[DimDistribution] = append(byDimension[DimDistribution], qv)
		}
	}
	if in.UnderPopulated {
		byDimension[DimCoverage] = append(byDimension[DimCoverage], types.Violation{
			Rule:     "under_populated_category",
			Severity: types.SeverityWarning,
			Details:  fmt.Sprintf("Category %q is below its minimum item population", in.Category),
			Category: in.Category,
		})
	}

	result := &types.GateResult{Category: in.Category}

	// Automatic fails run first; a triggered condition is named in the
	// result and overrides whatever the weighted total says.
	result.AutoFails = append(result.AutoFails, structuralAbsenceFails(in.Violations)...)
	if in.Quota != nil && in.Quota.Status == types.StatusFail {
		result.AutoFails = append(result.AutoFails,
			fmt.Sprintf("quota below minimum: %d special slides, need %d more",
				in.Quota.Special, in.Quota.Deficit))
	}

	var total float64
	for _, dim := range spec.Dimensions {
		violations := byDimension[dim.Name]
		score := deductiveScore(violations, spec.Penalties)
		result.Dimensions = append(result.Dimensions, types.DimensionScore{
			Name:       dim.Name,
			Score:      score,
			Weight:     dim.Weight,
			Violations: violations,
		})
		if dim.Floor > 0 && score < dim.Floor {
			result.AutoFails = append(result.AutoFails,
				fmt.Sprintf("dimension %s scored %.0f, below its floor %.0f", dim.Name, score, dim.Floor))
		}
		total += score * dim.Weight
	}
	result.WeightedTotal = total

	switch {
	case len(result.AutoFails) > 0:
		result.Status = types.StatusFail
	case total >= spec.PassThreshold:
		result.Status = types.StatusPass
	case total >= spec.WarnThreshold:
		result.Status = types.StatusWarn
	default:
		result.Status = types.StatusFail
	}

	return result, nil
}

// deductiveScore starts at 100 and subtracts the configured penalty per
// violation class, never going below 0.
func deductiveScore(violations []types.Violation, penalties map[string]float64) float64 {
	score := 100.0
	for _, v := range violations {
		score -= penalties[v.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

// structuralAbsenceFails names every required structural element that is
// entirely absent. Absence is never scoreable around.
func structuralAbsenceFails(violations []types.Violation) []string {
	var fails []string
	for _, v := range violations {
		switch v.Rule {
		case validation.RuleMissingField:
			fails = append(fails, fmt.Sprintf("required field %q absent from %s unit", v.Field, v.UnitType))
		case validation.RuleUnknownUnitType:
			fails = append(fails, fmt.Sprintf("unit type %q has no limits entry", v.UnitType))
		}
	}
	return fails
}

// quotaViolations converts a non-passing quota result into scoreable
// violations so distribution findings carry weight in the rubric.
func quotaViolations(q *types.QuotaResult) []types.Violation {
	switch q.Status {
	case types.StatusFail:
		return []types.Violation{{
			Rule:     "quota_below_minimum",
			Severity: types.SeverityError,
			Details: fmt.Sprintf("Deck has %d special slides, band minimum is %d",
				q.Special, q.Minimum),
			Category: q.Category,
			Measured: &q.Special,
			Limit:    &q.Minimum,
		}}
	case types.StatusWarn:
		return []types.Violation{{
			Rule:     "quota_outside_target",
			Severity: types.SeverityWarning,
			Details: fmt.Sprintf("Deck has %d special slides, target range is %d-%d",
				q.Special, q.TargetMin, q.TargetMax),
			Category: q.Category,
			Measured: &q.Special,
		}}
	default:
		return nil
	}
}
