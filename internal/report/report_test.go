package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

func intPtr(i int) *int { return &i }

func TestBuild_EmptyInputsProduceEmptyReport(t *testing.T) {
	rep, err := Build(nil, nil, nil)
	require.NoError(t, err)

	assert.Zero(t, rep.TotalFindings)
	assert.Empty(t, rep.ActionItems)
	assert.False(t, rep.RequiresImmediateAction)
	assert.False(t, rep.GeneratedAt.IsZero())
}

func TestBuild_GroupsFindingsByRuleType(t *testing.T) {
	violations := []types.Violation{
		{Rule: validation.RuleLineTooLong, Severity: types.SeverityWarning,
			Category: "foundations", UnitType: "lecture", Field: "body", Line: intPtr(3)},
		{Rule: validation.RuleLineTooLong, Severity: types.SeverityWarning,
			Category: "foundations", UnitType: "lecture", Field: "body", Line: intPtr(5)},
		{Rule: validation.RuleLineTooLong, Severity: types.SeverityWarning,
			Category: "techniques", UnitType: "drill", Field: "body", Line: intPtr(1)},
		{Rule: validation.RuleMissingMarker, Severity: types.SeverityWarning,
			Category: "foundations", UnitType: "lecture", Field: "speaker_notes"},
	}

	rep, err := Build(violations, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, rep.TotalFindings)
	require.Len(t, rep.ActionItems, 2, "three line findings collapse into one item")

	var lineItem *types.ActionItem
	for i := range rep.ActionItems {
		if rep.ActionItems[i].Rule == validation.RuleLineTooLong {
			lineItem = &rep.ActionItems[i]
		}
	}
	require.NotNil(t, lineItem)
	assert.Equal(t, 3, lineItem.Count)
	assert.Len(t, lineItem.Locations, 3)
	assert.NotEmpty(t, lineItem.Checklist)
	assert.Equal(t, types.FindingStructure, lineItem.Category)
}

func TestBuild_MissingFieldIsCriticalAndImmediate(t *testing.T) {
	violations := []types.Violation{
		{Rule: validation.RuleMissingField, Severity: types.SeverityError,
			Category: "recap", UnitType: "recap", Field: "body"},
	}

	rep, err := Build(violations, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, types.ReportSeverityCritical, rep.OverallSeverity)
	assert.True(t, rep.RequiresImmediateAction)
	require.Len(t, rep.ActionItems, 1)
	assert.Equal(t, types.ReportSeverityCritical, rep.ActionItems[0].Severity)
}

func TestBuild_WarningsAloneAreNotImmediate(t *testing.T) {
	violations := []types.Violation{
		{Rule: validation.RuleLineTooLong, Severity: types.SeverityWarning},
		{Rule: validation.RuleDuration, Severity: types.SeverityWarning},
	}

	rep, err := Build(violations, nil, nil)
	require.NoError(t, err)
	assert.False(t, rep.RequiresImmediateAction)
	assert.Equal(t, types.ReportSeverityLow, rep.OverallSeverity)
}

func TestBuild_QuotaFailBecomesHighDistributionFinding(t *testing.T) {
	quota := &types.QuotaResult{
		Category: "techniques",
		Status:   types.StatusFail,
		DeckSize: 14, Special: 1, Minimum: 2, Deficit: 1,
	}

	rep, err := Build(nil, []*types.QuotaResult{quota}, nil)
	require.NoError(t, err)

	require.Len(t, rep.ActionItems, 1)
	item := rep.ActionItems[0]
	assert.Equal(t, types.FindingDistribution, item.Category)
	assert.Equal(t, types.ReportSeverityHigh, item.Severity)
	assert.Equal(t, []string{"techniques"}, item.Locations)
	assert.True(t, rep.RequiresImmediateAction)
}

func TestBuild_QuotaAdvisoryIsLowSeverity(t *testing.T) {
	quota := &types.QuotaResult{
		Category:   "drill",
		Status:     types.StatusPass,
		Advisories: []string{"all 3 exercise slides share variant \"multiple_choice\"; vary exercise types"},
	}

	rep, err := Build(nil, []*types.QuotaResult{quota}, nil)
	require.NoError(t, err)
	require.Len(t, rep.ActionItems, 1)
	assert.Equal(t, types.ReportSeverityLow, rep.ActionItems[0].Severity)
	assert.False(t, rep.RequiresImmediateAction)
}

func TestBuild_GateAutoFailsBecomeCriticalFindings(t *testing.T) {
	gateResult := &types.GateResult{
		Category:  "foundations",
		Status:    types.StatusFail,
		AutoFails: []string{"required field \"body\" absent from lecture unit"},
	}

	rep, err := Build(nil, nil, []*types.GateResult{gateResult})
	require.NoError(t, err)

	require.Len(t, rep.ActionItems, 1)
	assert.Equal(t, ruleGateAutoFail, rep.ActionItems[0].Rule)
	assert.Equal(t, types.ReportSeverityCritical, rep.ActionItems[0].Severity)
	assert.True(t, rep.RequiresImmediateAction)
}

func TestBuild_ActionItemsOrderedBySeverity(t *testing.T) {
	violations := []types.Violation{
		{Rule: validation.RuleLineTooLong, Severity: types.SeverityWarning},
		{Rule: validation.RuleMissingField, Severity: types.SeverityError, Field: "title"},
		{Rule: validation.RuleMissingMarker, Severity: types.SeverityWarning},
	}

	rep, err := Build(violations, nil, nil)
	require.NoError(t, err)
	require.Len(t, rep.ActionItems, 3)

	for i := 1; i < len(rep.ActionItems); i++ {
		assert.GreaterOrEqual(t,
			types.SeverityRank(rep.ActionItems[i-1].Severity),
			types.SeverityRank(rep.ActionItems[i].Severity),
			"action items must be ordered strongest first")
	}
	assert.Equal(t, validation.RuleMissingField, rep.ActionItems[0].Rule)
}

func TestFinalSeverity_FieldSpecificOverride(t *testing.T) {
	severity := finalSeverity(types.FindingContent, validation.RuleAboveMaxWords, "title", types.SeverityWarning)
	assert.Equal(t, types.ReportSeverityMedium, severity)

	severity = finalSeverity(types.FindingContent, validation.RuleAboveMaxWords, "body", types.SeverityWarning)
	assert.Equal(t, types.ReportSeverityLow, severity)
}

func TestFinalSeverity_FallbackFromOriginal(t *testing.T) {
	assert.Equal(t, types.ReportSeverityHigh,
		finalSeverity(types.FindingContent, "some_new_rule", "", types.SeverityError))
	assert.Equal(t, types.ReportSeverityLow,
		finalSeverity(types.FindingContent, "some_new_rule", "", types.SeverityWarning))
}
