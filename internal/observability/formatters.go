// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/lesson-factory/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAssignments outputs per-category counts and flag totals for a batch
// classification result.
func (p *Printer) PrintAssignments(set *types.AssignmentSet) {
	if set == nil || len(set.Assignments) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Classified %d items:\n\n", len(set.Assignments)))

	categories := make([]string, 0, len(set.CategoryCounts))
	for category := range set.CategoryCounts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("  %-14s %d\n", category, set.CategoryCounts[category]))
	}

	flagCounts := map[string]int{}
	for _, a := range set.Assignments {
		for _, f := range a.Flags {
			flagCounts[f.Type]++
		}
	}
	if len(flagCounts) > 0 {
		sb.WriteString("\nFlags:\n")
		for _, flagType := range []string{types.FlagFrontload, types.FlagAmbiguous, types.FlagXRef} {
			if n := flagCounts[flagType]; n > 0 {
				sb.WriteString(fmt.Sprintf("  %-14s %d\n", flagType, n))
			}
		}
	}

	if len(set.UnderPopulated) > 0 {
		sb.WriteString(fmt.Sprintf("\nUnder-populated: %s\n", strings.Join(set.UnderPopulated, ", ")))
	}

	p.printBox("CLASSIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs any constraint violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations == nil || len(violations.Violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations (%d errors, %d warnings):\n\n",
		len(violations.Violations), len(violations.Errors()), len(violations.Warnings())))

	count := min(len(violations.Violations), maxItemsToShow)
	for i := 0; i < count; i++ {
		v := violations.Violations[i]
		marker := "⚠"
		if v.Severity == types.SeverityError {
			marker = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s", marker, v.Rule))
		if v.Field != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", v.Field))
		}
		sb.WriteString("\n")
		details := v.Details
		if len(details) > 45 {
			details = details[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s\n", details))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(violations.Violations) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(violations.Violations)-maxItemsToShow))
	}

	p.printBox("CONSTRAINT VIOLATIONS", sb.String())
}

// PrintQuota outputs a deck's special-slide quota check.
func (p *Printer) PrintQuota(result *types.QuotaResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Section:  %s\n", result.Category))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", strings.ToUpper(result.Status)))
	sb.WriteString(fmt.Sprintf("Deck:     %d slides (band %d-%d)\n", result.DeckSize, result.BandMin, result.BandMax))
	sb.WriteString(fmt.Sprintf("Special:  %d (minimum %d, target %d-%d)\n",
		result.Special, result.Minimum, result.TargetMin, result.TargetMax))
	if result.Deficit > 0 {
		sb.WriteString(fmt.Sprintf("Deficit:  %d\n", result.Deficit))
	}
	for _, advisory := range result.Advisories {
		sb.WriteString(fmt.Sprintf("Note:     %s\n", advisory))
	}

	p.printBox("QUOTA CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGate outputs a section's quality-gate evaluation with per-dimension
// scores and any automatic-fail conditions.
func (p *Printer) PrintGate(result *types.GateResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Section:  %s\n", result.Category))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", strings.ToUpper(result.Status)))
	sb.WriteString(fmt.Sprintf("Total:    %.1f\n\n", result.WeightedTotal))

	for _, dim := range result.Dimensions {
		sb.WriteString(fmt.Sprintf("  %-14s %5.1f  (weight %.2f)\n", dim.Name, dim.Score, dim.Weight))
	}

	if len(result.AutoFails) > 0 {
		sb.WriteString("\nAuto-fails:\n")
		for _, reason := range result.AutoFails {
			if len(reason) > 50 {
				reason = reason[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", reason))
		}
	}

	p.printBox("QUALITY GATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the prioritized remediation report.
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Findings: %d\n", report.TotalFindings))
	sb.WriteString(fmt.Sprintf("Severity: %s\n", report.OverallSeverity))
	if report.RequiresImmediateAction {
		sb.WriteString("Requires immediate action\n")
	}

	if len(report.ActionItems) > 0 {
		sb.WriteString("\n")
		count := min(len(report.ActionItems), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := report.ActionItems[i]
			action := item.Action
			if len(action) > 45 {
				action = action[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, item.Severity, action))
			sb.WriteString(fmt.Sprintf("   %d occurrence(s)\n", item.Count))
		}
		if len(report.ActionItems) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n... and %d more action items", len(report.ActionItems)-maxItemsToShow))
		}
	}

	p.printBox("REMEDIATION REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
