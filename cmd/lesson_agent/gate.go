package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/gate"
	"github.com/jonathan/lesson-factory/internal/observability"
	"github.com/jonathan/lesson-factory/internal/quota"
	"github.com/jonathan/lesson-factory/internal/validation"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Score a content unit or slide deck against the quality gate",
	Long:  "Validates the input, runs the quota check for decks, and produces a weighted gate score with pass/warn/fail status and any auto-fail conditions.",
	RunE:  runGate,
}

var (
	gateUnit           string
	gateDeck           string
	gateRuleset        string
	gateOut            string
	gateUnderPopulated bool
)

func init() {
	gateCmd.Flags().StringVar(&gateUnit, "unit", "", "Path to a content unit JSON file")
	gateCmd.Flags().StringVarP(&gateDeck, "deck", "d", "", "Path to a slide deck JSON file")
	gateCmd.Flags().StringVarP(&gateRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	gateCmd.Flags().StringVarP(&gateOut, "out", "o", "", "Path to output gate result JSON file")
	gateCmd.Flags().BoolVar(&gateUnderPopulated, "under-populated", false, "Score the section as below its minimum item population")

	rootCmd.AddCommand(gateCmd)
}

func runGate(_ *cobra.Command, _ []string) error {
	if gateUnit == "" && gateDeck == "" {
		return fmt.Errorf("either --unit or --deck is required")
	}
	if gateUnit != "" && gateDeck != "" {
		return fmt.Errorf("--unit and --deck are mutually exclusive")
	}

	rs, err := loadRulesetFlag(gateRuleset)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}

	in := gate.Input{UnderPopulated: gateUnderPopulated}

	if gateUnit != "" {
		unit, err := validation.LoadUnit(gateUnit)
		if err != nil {
			return fmt.Errorf("failed to load unit: %w", err)
		}
		violations, err := validation.ValidateUnit(unit, rs)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		in.Category = unit.Category
		in.Violations = violations.Violations
	} else {
		deck, err := validation.LoadDeck(gateDeck)
		if err != nil {
			return fmt.Errorf("failed to load deck: %w", err)
		}
		q, err := quota.CheckDeck(deck, rs)
		if err != nil {
			return fmt.Errorf("quota check failed: %w", err)
		}
		in.Category = deck.Category
		in.Quota = q
	}
	if in.Category == "" {
		path := gateUnit
		if path == "" {
			path = gateDeck
		}
		base := filepath.Base(path)
		in.Category = strings.TrimSuffix(strings.TrimSuffix(base, ".unit.json"), ".deck.json")
	}

	result, err := gate.Score(in, rs)
	if err != nil {
		return fmt.Errorf("gate scoring failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintGate(result)

	if gateOut != "" {
		if err := writeJSONArtifact(gateOut, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Gate result: %s\n", gateOut)
	}

	if !result.Passed() {
		return fmt.Errorf("gate failed for %s: score %.1f below threshold", in.Category, result.WeightedTotal)
	}
	return nil
}
