package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

func validLecture() *types.ContentUnit {
	return &types.ContentUnit{
		Category:        "foundations",
		UnitType:        types.UnitLecture,
		DurationMinutes: 12,
		Fields: map[string]string{
			"title":    "Limits and Continuity",
			"overview": "This overview introduces the limit concept with enough words to clear the floor.\nIt previews continuity and the worked examples covered later.",
			"body": strings.Join([]string{
				strings.Repeat("body line with several words of content here ", 2),
				strings.Repeat("another body line with several more words here ", 2),
				strings.Repeat("a third body line carrying the remaining words ", 2),
				"closing line to round out the word count of this body field nicely",
			}, "\n"),
			"speaker_notes": "Open with the definition. [PAUSE]\nLet it sink in. [PAUSE]\nThen move on.",
		},
	}
}

func TestValidateUnit_CleanUnitHasNoViolations(t *testing.T) {
	violations, err := ValidateUnit(validLecture(), config.DefaultRuleset())
	require.NoError(t, err)
	assert.Empty(t, violations.Violations)
}

func TestValidateUnit_AtLineLimitPasses(t *testing.T) {
	rs := config.DefaultRuleset()
	maxLines := rs.Limits[types.UnitLecture].Fields["body"].MaxLines

	unit := validLecture()
	lines := make([]string, maxLines)
	for i := range lines {
		lines[i] = "body line with enough words to stay inside the word count limits"
	}
	unit.Fields["body"] = strings.Join(lines, "\n")

	violations, err := ValidateUnit(unit, rs)
	require.NoError(t, err)
	for _, v := range violations.Violations {
		assert.NotEqual(t, RuleTooManyLines, v.Rule, "exactly at the limit must pass")
	}
}

func TestValidateUnit_NineLinesAgainstMaxEight(t *testing.T) {
	rs := config.DefaultRuleset()
	limits := rs.Limits[types.UnitLecture]
	limits.Fields["body"] = config.FieldLimits{Required: true, MaxLines: 8}
	rs.Limits[types.UnitLecture] = limits

	unit := validLecture()
	lines := make([]string, 9)
	for i := range lines {
		lines[i] = "a non-empty body line"
	}
	unit.Fields["body"] = strings.Join(lines, "\n")

	violations, err := ValidateUnit(unit, rs)
	require.NoError(t, err)

	var lineCount []types.Violation
	for _, v := range violations.Violations {
		if v.Rule == RuleTooManyLines {
			lineCount = append(lineCount, v)
		}
	}
	require.Len(t, lineCount, 1, "expected exactly one line-count violation")

	v := lineCount[0]
	assert.Equal(t, types.SeverityError, v.Severity)
	require.NotNil(t, v.Measured)
	require.NotNil(t, v.Limit)
	assert.Equal(t, 9, *v.Measured)
	assert.Equal(t, 8, *v.Limit)
	assert.Contains(t, v.Details, "9")
	assert.Contains(t, v.Details, "8")
}

func TestValidateUnit_MissingRequiredFieldIsError(t *testing.T) {
	unit := validLecture()
	delete(unit.Fields, "overview")

	violations, err := ValidateUnit(unit, config.DefaultRuleset())
	require.NoError(t, err)

	found := false
	for _, v := range violations.Violations {
		if v.Rule == RuleMissingField && v.Field == "overview" {
			found = true
			assert.Equal(t, types.SeverityError, v.Severity)
		}
	}
	assert.True(t, found, "missing required field must be reported")
}

func TestValidateUnit_EmptyRequiredFieldIsError(t *testing.T) {
	unit := validLecture()
	unit.Fields["title"] = ""

	violations, err := ValidateUnit(unit, config.DefaultRuleset())
	require.NoError(t, err)

	found := false
	for _, v := range violations.Violations {
		if v.Rule == RuleMissingField && v.Field == "title" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateUnit_LineTooLongIsWarningWithCounts(t *testing.T) {
	rs := config.DefaultRuleset()
	maxChars := rs.Limits[types.UnitLecture].Fields["title"].MaxLineChars

	unit := validLecture()
	unit.Fields["title"] = "t " + strings.Repeat("x", maxChars)

	violations, err := ValidateUnit(unit, rs)
	require.NoError(t, err)

	found := false
	for _, v := range violations.Violations {
		if v.Rule == RuleLineTooLong && v.Field == "title" {
			found = true
			assert.Equal(t, types.SeverityWarning, v.Severity)
			require.NotNil(t, v.Measured)
			assert.Equal(t, maxChars+2, *v.Measured)
			require.NotNil(t, v.Limit)
			assert.Equal(t, maxChars, *v.Limit)
			require.NotNil(t, v.Line)
			assert.Equal(t, 1, *v.Line)
		}
	}
	assert.True(t, found)
}

func TestValidateUnit_WordRangeBothDirectionsDistinct(t *testing.T) {
	rs := config.DefaultRuleset()

	below := validLecture()
	below.Fields["overview"] = "too short"
	violations, err := ValidateUnit(below, rs)
	require.NoError(t, err)
	assert.True(t, hasRule(violations, RuleBelowMinWords, "overview"))
	assert.False(t, hasRule(violations, RuleAboveMaxWords, "overview"))

	above := validLecture()
	above.Fields["overview"] = strings.Repeat("word ", 100)
	violations, err = ValidateUnit(above, rs)
	require.NoError(t, err)
	assert.True(t, hasRule(violations, RuleAboveMaxWords, "overview"))
	assert.False(t, hasRule(violations, RuleBelowMinWords, "overview"))
}

func TestValidateUnit_MarkerMinimumEnforced(t *testing.T) {
	unit := validLecture()
	unit.Fields["speaker_notes"] = "Open with the definition. [PAUSE]\nThen move on."

	violations, err := ValidateUnit(unit, config.DefaultRuleset())
	require.NoError(t, err)

	found := false
	for _, v := range violations.Violations {
		if v.Rule == RuleMissingMarker {
			found = true
			require.NotNil(t, v.Measured)
			assert.Equal(t, 1, *v.Measured)
			require.NotNil(t, v.Limit)
			assert.Equal(t, 2, *v.Limit)
			assert.Contains(t, v.Details, "[PAUSE]")
		}
	}
	assert.True(t, found)
}

func TestValidateUnit_DurationOutOfRange(t *testing.T) {
	rs := config.DefaultRuleset()

	short := validLecture()
	short.DurationMinutes = 2
	violations, err := ValidateUnit(short, rs)
	require.NoError(t, err)
	assert.True(t, hasRule(violations, RuleDuration, ""))

	long := validLecture()
	long.DurationMinutes = 45
	violations, err = ValidateUnit(long, rs)
	require.NoError(t, err)
	assert.True(t, hasRule(violations, RuleDuration, ""))
}

func TestValidateUnit_UnknownUnitType(t *testing.T) {
	unit := validLecture()
	unit.UnitType = "interpretive_dance"

	violations, err := ValidateUnit(unit, config.DefaultRuleset())
	require.NoError(t, err)
	require.Len(t, violations.Violations, 1)
	assert.Equal(t, RuleUnknownUnitType, violations.Violations[0].Rule)
	assert.Equal(t, types.SeverityError, violations.Violations[0].Severity)
}

func TestLoadUnitsDir_LoadsUnitsAndDecks(t *testing.T) {
	dir := t.TempDir()

	unitJSON := `{"category":"foundations","unit_type":"lecture","duration_minutes":10,
		"fields":{"title":"Limits","overview":"o","body":"b"}}`
	deckJSON := `{"category":"foundations","slides":[
		{"kind":"content","title":"Limits"},
		{"kind":"exercise","variant":"multiple_choice","title":"Quiz"}]}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "foundations.unit.json"), []byte(unitJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foundations.deck.json"), []byte(deckJSON), 0644))

	units, decks, err := LoadUnitsDir(dir)
	require.NoError(t, err)
	require.Contains(t, units, "foundations")
	require.Contains(t, decks, "foundations")
	assert.Equal(t, types.UnitLecture, units["foundations"].UnitType)
	assert.Len(t, decks["foundations"].Slides, 2)
}

func TestLoadUnit_MissingFile(t *testing.T) {
	_, err := LoadUnit(filepath.Join(t.TempDir(), "nope.unit.json"))
	require.Error(t, err)
	var fileErr *FileReadError
	assert.ErrorAs(t, err, &fileErr)
}

func TestLoadUnit_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foundations.unit.json")
	badJSON := `{"category":"foundations","unit_type":"interpretive_dance","fields":{}}`
	require.NoError(t, os.WriteFile(path, []byte(badJSON), 0644))

	_, err := LoadUnit(path)
	require.Error(t, err)
	var loadErr *Error
	assert.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "schema check")
}

func TestSortedFieldNames_LexicographicOrder(t *testing.T) {
	fields := map[string]config.FieldLimits{
		"title":    {},
		"body":     {},
		"overview": {},
		"aside":    {},
	}

	assert.Equal(t, []string{"aside", "body", "overview", "title"}, sortedFieldNames(fields))
}

func hasRule(violations *types.Violations, rule, field string) bool {
	for _, v := range violations.Violations {
		if v.Rule == rule && (field == "" || v.Field == field) {
			return true
		}
	}
	return false
}
