package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/observability"
	"github.com/jonathan/lesson-factory/internal/quota"
	"github.com/jonathan/lesson-factory/internal/validation"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Check a slide deck against exercise quota bands",
	RunE:  runQuota,
}

var (
	quotaDeck    string
	quotaRuleset string
	quotaOut     string
)

func init() {
	quotaCmd.Flags().StringVarP(&quotaDeck, "deck", "d", "", "Path to a slide deck JSON file (required)")
	quotaCmd.Flags().StringVarP(&quotaRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	quotaCmd.Flags().StringVarP(&quotaOut, "out", "o", "", "Path to output quota result JSON file")

	if err := quotaCmd.MarkFlagRequired("deck"); err != nil {
		panic(fmt.Sprintf("failed to mark deck flag as required: %v", err))
	}

	rootCmd.AddCommand(quotaCmd)
}

func runQuota(_ *cobra.Command, _ []string) error {
	deck, err := validation.LoadDeck(quotaDeck)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}

	rs, err := loadRulesetFlag(quotaRuleset)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}

	result, err := quota.CheckDeck(deck, rs)
	if err != nil {
		return fmt.Errorf("quota check failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintQuota(result)

	if quotaOut != "" {
		if err := writeJSONArtifact(quotaOut, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Quota result: %s\n", quotaOut)
	}
	return nil
}
