package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/classify"
	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/ingest"
	"github.com/jonathan/lesson-factory/internal/observability"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify ingested items into category sections",
	Long:  "Runs the deterministic rule cascade over an item batch, assigning every item to exactly one category with flags for frontloading, ambiguity, and cross-references.",
	RunE:  runClassify,
}

var (
	classifyItems   string
	classifyRuleset string
	classifyOut     string
	classifyVerbose bool
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyItems, "items", "i", "", "Path to items JSON file (required)")
	classifyCmd.Flags().StringVarP(&classifyRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	classifyCmd.Flags().StringVarP(&classifyOut, "out", "o", "", "Path to output assignments JSON file (required)")
	classifyCmd.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "Print the classification summary")

	if err := classifyCmd.MarkFlagRequired("items"); err != nil {
		panic(fmt.Sprintf("failed to mark items flag as required: %v", err))
	}
	if err := classifyCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(classifyCmd)
}

func loadRulesetFlag(path string) (*config.Ruleset, error) {
	if path == "" {
		return config.DefaultRuleset(), nil
	}
	return config.LoadRuleset(path)
}

func writeJSONArtifact(path string, v any) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func runClassify(_ *cobra.Command, _ []string) error {
	batch, err := ingest.LoadItems(classifyItems)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}

	rs, err := loadRulesetFlag(classifyRuleset)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}

	engine := classify.NewEngine(rs)
	assignments, err := engine.ClassifyBatch(batch.Items)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if err := writeJSONArtifact(classifyOut, assignments); err != nil {
		return err
	}

	if classifyVerbose {
		observability.NewPrinter(os.Stdout).PrintAssignments(assignments)
	}

	fmt.Fprintf(os.Stdout, "Classified %d items into %d categories\n",
		len(assignments.Assignments), len(assignments.CategoryCounts))
	fmt.Fprintf(os.Stdout, "Assignments: %s\n", classifyOut)
	return nil
}
