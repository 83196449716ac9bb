package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/lesson-factory/internal/types"
)

func TestPrintAssignments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	set := &types.AssignmentSet{
		Assignments: []types.Assignment{
			{ItemID: 1, Category: "foundations", Flags: []types.Flag{{Type: types.FlagFrontload}}},
			{ItemID: 2, Category: "techniques"},
		},
		CategoryCounts: map[string]int{"foundations": 1, "techniques": 1},
		UnderPopulated: []string{"context"},
	}

	p.PrintAssignments(set)
	output := buf.String()

	assert.Contains(t, output, "CLASSIFICATION")
	assert.Contains(t, output, "foundations")
	assert.Contains(t, output, "techniques")
	assert.Contains(t, output, "frontload")
	assert.Contains(t, output, "Under-populated: context")
}

func TestPrintAssignments_NilAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAssignments(nil)
	p.PrintAssignments(&types.AssignmentSet{})
	assert.Empty(t, buf.String())
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	violations := &types.Violations{
		Violations: []types.Violation{
			{Rule: "too_many_lines", Severity: types.SeverityError, Field: "body", Details: "body has 9 lines, maximum is 8"},
			{Rule: "missing_marker", Severity: types.SeverityWarning, Field: "speaker_notes", Details: "expected 2 markers"},
		},
	}

	p.PrintViolations(violations)
	output := buf.String()

	assert.Contains(t, output, "CONSTRAINT VIOLATIONS")
	assert.Contains(t, output, "too_many_lines")
	assert.Contains(t, output, "1 errors, 1 warnings")
}

func TestPrintViolations_NoneFound(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintViolations(&types.Violations{})
	assert.Contains(t, buf.String(), "NO VIOLATIONS FOUND")
}

func TestPrintQuota(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuota(&types.QuotaResult{
		Category:  "techniques",
		Status:    types.StatusFail,
		DeckSize:  14,
		Special:   1,
		BandMin:   12,
		BandMax:   15,
		Minimum:   2,
		TargetMin: 3,
		TargetMax: 4,
		Deficit:   1,
	})
	output := buf.String()

	assert.Contains(t, output, "QUOTA CHECK")
	assert.Contains(t, output, "FAIL")
	assert.Contains(t, output, "14 slides (band 12-15)")
	assert.Contains(t, output, "Deficit:  1")
}

func TestPrintGate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGate(&types.GateResult{
		Category:      "foundations",
		Status:        types.StatusFail,
		WeightedTotal: 94.8,
		Dimensions: []types.DimensionScore{
			{Name: "structure", Score: 85, Weight: 0.35},
			{Name: "content", Score: 100, Weight: 0.30},
		},
		AutoFails: []string{"required field title is missing"},
	})
	output := buf.String()

	assert.Contains(t, output, "QUALITY GATE")
	assert.Contains(t, output, "structure")
	assert.Contains(t, output, "Auto-fails:")
	assert.Contains(t, output, "required field title")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&types.Report{
		TotalFindings:           3,
		OverallSeverity:         types.ReportSeverityHigh,
		RequiresImmediateAction: false,
		ActionItems: []types.ActionItem{
			{Rule: "line_too_long", Severity: types.ReportSeverityLow, Action: "Shorten the affected lines", Count: 3},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "REMEDIATION REPORT")
	assert.Contains(t, output, "Findings: 3")
	assert.Contains(t, output, "Shorten the affected lines")
}

func TestPrintNilResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuota(nil)
	p.PrintGate(nil)
	p.PrintReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "this line is definitely much longer than the box width of sixty characters allows")
	assert.Contains(t, buf.String(), "...")
}
