package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

// Rule identifiers emitted by the constraint validator.
const (
	RuleUnknownUnitType = "unknown_unit_type"
	RuleMissingField    = "missing_field"
	RuleTooManyLines    = "too_many_lines"
	RuleLineTooLong     = "line_too_long"
	RuleBelowMinWords   = "below_min_words"
	RuleAboveMaxWords   = "above_max_words"
	RuleMissingMarker   = "missing_marker"
	RuleDuration        = "duration_out_of_range"
)

// ValidateUnit checks one content unit against the limits table for its
// declared type. Every limit is looked up from the ruleset; none is kept
// here. Violations carry the measured value and the limit so the message is
// self-explanatory downstream.
func ValidateUnit(unit *types.ContentUnit, rs *config.Ruleset) (*types.Violations, error) {
	if unit == nil {
		return nil, &Error{Message: "content unit is nil"}
	}

	limits, ok := rs.Limits[unit.UnitType]
	if !ok {
		return &types.Violations{Violations: []types.Violation{{
			Rule:     RuleUnknownUnitType,
			Severity: types.SeverityError,
			Details:  fmt.Sprintf("Unit type %q has no limits entry in the ruleset", unit.UnitType),
			Category: unit.Category,
			UnitType: unit.UnitType,
		}}}, nil
	}

	var violations []types.Violation
	for _, field := range sortedFieldNames(limits.Fields) {
		fieldLimits := limits.Fields[field]
		violations = append(violations, validateField(unit, field, fieldLimits)...)
	}
	violations = append(violations, validateDuration(unit, limits)...)

	return &types.Violations{Violations: violations}, nil
}

// validateField runs every configured check for one named field of the unit.
func validateField(unit *types.ContentUnit, field string, limits config.FieldLimits) []types.Violation {
	var violations []types.Violation

	text, present := unit.FieldText(field)
	if !present {
		if limits.Required {
			// A missing required field is always an error, never a warning.
			violations = append(violations, types.Violation{
				Rule:     RuleMissingField,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("Required field %q is missing or empty", field),
				Category: unit.Category,
				UnitType: unit.UnitType,
				Field:    field,
			})
		}
		return violations
	}

	lines := nonEmptyLines(text)

	if limits.MaxLines > 0 && len(lines) > limits.MaxLines {
		violations = append(violations, types.Violation{
			Rule:     RuleTooManyLines,
			Severity: types.SeverityError,
			Details: fmt.Sprintf("Field %q has %d lines, maximum is %d",
				field, len(lines), limits.MaxLines),
			Category: unit.Category,
			UnitType: unit.UnitType,
			Field:    field,
			Measured: intPtr(len(lines)),
			Limit:    intPtr(limits.MaxLines),
		})
	}

	if limits.MaxLineChars > 0 {
		for i, line := range lines {
			chars := len([]rune(line))
			if chars > limits.MaxLineChars {
				lineNum := i + 1
				violations = append(violations, types.Violation{
					Rule:     RuleLineTooLong,
					Severity: types.SeverityWarning,
					Details: fmt.Sprintf("Field %q line %d has %d characters, maximum is %d",
						field, lineNum, chars, limits.MaxLineChars),
					Category: unit.Category,
					UnitType: unit.UnitType,
					Field:    field,
					Line:     intPtr(lineNum),
					Measured: intPtr(chars),
					Limit:    intPtr(limits.MaxLineChars),
				})
			}
		}
	}

	words := len(strings.Fields(text))
	if limits.MinWords > 0 && words < limits.MinWords {
		violations = append(violations, types.Violation{
			Rule:     RuleBelowMinWords,
			Severity: types.SeverityWarning,
			Details: fmt.Sprintf("Field %q has %d words, minimum is %d",
				field, words, limits.MinWords),
			Category: unit.Category,
			UnitType: unit.UnitType,
			Field:    field,
			Measured: intPtr(words),
			Limit:    intPtr(limits.MinWords),
		})
	}
	if limits.MaxWords > 0 && words > limits.MaxWords {
		violations = append(violations, types.Violation{
			Rule:     RuleAboveMaxWords,
			Severity: types.SeverityWarning,
			Details: fmt.Sprintf("Field %q has %d words, maximum is %d",
				field, words, limits.MaxWords),
			Category: unit.Category,
			UnitType: unit.UnitType,
			Field:    field,
			Measured: intPtr(words),
			Limit:    intPtr(limits.MaxWords),
		})
	}

	for _, marker := range limits.Markers {
		count := strings.Count(text, marker.Token)
		if count < marker.Min {
			violations = append(violations, types.Violation{
				Rule:     RuleMissingMarker,
				Severity: types.SeverityWarning,
				Details: fmt.Sprintf("Field %q contains marker %s %d times, minimum is %d",
					field, marker.Token, count, marker.Min),
				Category: unit.Category,
				UnitType: unit.UnitType,
				Field:    field,
				Measured: intPtr(count),
				Limit:    intPtr(marker.Min),
			})
		}
	}

	return violations
}

// validateDuration checks the unit's declared duration against the type's
// configured range. Both bounds report distinct messages.
func validateDuration(unit *types.ContentUnit, limits config.UnitLimits) []types.Violation {
	var violations []types.Violation
	if limits.MinMinutes > 0 && unit.DurationMinutes < limits.MinMinutes {
		violations = append(violations, types.Violation{
			Rule:     RuleDuration,
			Severity: types.SeverityWarning,
			Details: fmt.Sprintf("Unit declares %d minutes, minimum for %s is %d",
				unit.DurationMinutes, unit.UnitType, limits.MinMinutes),
			Category: unit.Category,
			UnitType: unit.UnitType,
			Measured: intPtr(unit.DurationMinutes),
			Limit:    intPtr(limits.MinMinutes),
		})
	}
	if limits.MaxMinutes > 0 && unit.DurationMinutes > limits.MaxMinutes {
		violations = append(violations, types.Violation{
			Rule:     RuleDuration,
			Severity: types.SeverityWarning,
			Details: fmt.Sprintf("Unit declares %d minutes, maximum for %s is %d",
				unit.DurationMinutes, unit.UnitType, limits.MaxMinutes),
			Category: unit.Category,
			UnitType: unit.UnitType,
			Measured: intPtr(unit.DurationMinutes),
			Limit:    intPtr(limits.MaxMinutes),
		})
	}
	return violations
}

// nonEmptyLines splits text into lines, dropping blank ones so spacing
// between paragraphs never counts against a line budget.
func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// sortedFieldNames returns the limit table's field names in stable order so
// validation output is deterministic.
func sortedFieldNames(fields map[string]config.FieldLimits) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// intPtr returns a pointer to an integer
func intPtr(i int) *int {
	return &i
}
