package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/gate"
	"github.com/jonathan/lesson-factory/internal/observability"
	"github.com/jonathan/lesson-factory/internal/quota"
	"github.com/jonathan/lesson-factory/internal/report"
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a full offline review over a units directory",
	Long:  "Validates every unit, checks deck quotas, scores each category section through the quality gate, and aggregates the findings into a remediation report.",
	RunE:  runReport,
}

var (
	reportUnits   string
	reportRuleset string
	reportOut     string
	reportVerbose bool
)

func init() {
	reportCmd.Flags().StringVarP(&reportUnits, "units", "u", "", "Path to a directory of unit files (required)")
	reportCmd.Flags().StringVarP(&reportRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Path to output report JSON file")
	reportCmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "Print per-section findings as they are produced")

	if err := reportCmd.MarkFlagRequired("units"); err != nil {
		panic(fmt.Sprintf("failed to mark units flag as required: %v", err))
	}

	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	rs, err := loadRulesetFlag(reportRuleset)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}

	units, decks, err := validation.LoadUnitsDir(reportUnits)
	if err != nil {
		return fmt.Errorf("failed to load units: %w", err)
	}
	if len(units) == 0 {
		return fmt.Errorf("no unit files found in %s", reportUnits)
	}

	// Group units and decks by category so each section is reviewed as a whole.
	unitsByCategory := make(map[string][]*types.ContentUnit)
	for name, unit := range units {
		category := unit.Category
		if category == "" {
			category = name
		}
		unitsByCategory[category] = append(unitsByCategory[category], unit)
	}
	decksByCategory := make(map[string][]*types.SlideDeck)
	for name, deck := range decks {
		category := deck.Category
		if category == "" {
			category = name
		}
		decksByCategory[category] = append(decksByCategory[category], deck)
	}

	categories := make([]string, 0, len(unitsByCategory))
	for category := range unitsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	printer := observability.NewPrinter(os.Stdout)
	var allViolations []types.Violation
	var allQuotas []*types.QuotaResult
	var allGates []*types.GateResult

	for _, category := range categories {
		var sectionViolations []types.Violation
		for _, unit := range unitsByCategory[category] {
			violations, err := validation.ValidateUnit(unit, rs)
			if err != nil {
				return fmt.Errorf("validation failed for %s: %w", category, err)
			}
			sectionViolations = append(sectionViolations, violations.Violations...)
		}

		var sectionQuota *types.QuotaResult
		for _, deck := range decksByCategory[category] {
			q, err := quota.CheckDeck(deck, rs)
			if err != nil {
				return fmt.Errorf("quota check failed for %s: %w", category, err)
			}
			q.Category = category
			sectionQuota = q
			allQuotas = append(allQuotas, q)
		}

		gr, err := gate.Score(gate.Input{
			Category:   category,
			Violations: sectionViolations,
			Quota:      sectionQuota,
		}, rs)
		if err != nil {
			return fmt.Errorf("gate scoring failed for %s: %w", category, err)
		}

		allViolations = append(allViolations, sectionViolations...)
		allGates = append(allGates, gr)

		if reportVerbose {
			fmt.Fprintf(os.Stdout, "--- %s ---\n", category)
			printer.PrintViolations(&types.Violations{Violations: sectionViolations})
			if sectionQuota != nil {
				printer.PrintQuota(sectionQuota)
			}
			printer.PrintGate(gr)
		}
	}

	rpt, err := report.Build(allViolations, allQuotas, allGates)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	printer.PrintReport(rpt)

	if reportOut != "" {
		if err := writeJSONArtifact(reportOut, rpt); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Report: %s\n", reportOut)
	}
	return nil
}
