package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/observability"
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate content units against constraint limits",
	Long:  "Checks units in a directory (or a single unit file) against per-type field limits, marker rules, and duration bounds, reporting every violation found.",
	RunE:  runValidate,
}

var (
	validateUnits   string
	validateUnit    string
	validateRuleset string
	validateOut     string
	validateWatch   bool
	validateVerbose bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateUnits, "units", "u", "", "Path to a directory of unit files")
	validateCmd.Flags().StringVar(&validateUnit, "unit", "", "Path to a single unit JSON file")
	validateCmd.Flags().StringVarP(&validateRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	validateCmd.Flags().StringVarP(&validateOut, "out", "o", "", "Path to output violations JSON file")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "Watch the units directory and re-validate on changes")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Print each violation")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if validateUnits == "" && validateUnit == "" {
		return fmt.Errorf("either --units or --unit is required")
	}
	if validateUnits != "" && validateUnit != "" {
		return fmt.Errorf("--units and --unit are mutually exclusive")
	}
	if validateWatch && validateUnits == "" {
		return fmt.Errorf("--watch requires --units")
	}

	rs, err := loadRulesetFlag(validateRuleset)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}

	if validateUnit != "" {
		return validateSingleUnit(validateUnit, rs)
	}

	if err := validateUnitsDir(validateUnits, rs); err != nil {
		return err
	}
	if validateWatch {
		return watchUnitsDir(validateUnits, rs)
	}
	return nil
}

func validateSingleUnit(path string, rs *config.Ruleset) error {
	unit, err := validation.LoadUnit(path)
	if err != nil {
		return fmt.Errorf("failed to load unit: %w", err)
	}

	violations, err := validation.ValidateUnit(unit, rs)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if validateVerbose {
		observability.NewPrinter(os.Stdout).PrintViolations(violations)
	}
	if validateOut != "" {
		if err := writeJSONArtifact(validateOut, violations); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "%s: %d errors, %d warnings\n",
		filepath.Base(path), len(violations.Errors()), len(violations.Warnings()))
	return nil
}

func validateUnitsDir(dir string, rs *config.Ruleset) error {
	units, _, err := validation.LoadUnitsDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load units: %w", err)
	}
	if len(units) == 0 {
		return fmt.Errorf("no unit files found in %s", dir)
	}

	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)

	all := &types.Violations{}
	printer := observability.NewPrinter(os.Stdout)
	for _, name := range names {
		violations, err := validation.ValidateUnit(units[name], rs)
		if err != nil {
			return fmt.Errorf("validation failed for %s: %w", name, err)
		}
		all.Violations = append(all.Violations, violations.Violations...)
		if validateVerbose && len(violations.Violations) > 0 {
			fmt.Fprintf(os.Stdout, "--- %s ---\n", name)
			printer.PrintViolations(violations)
		}
	}

	if validateOut != "" {
		if err := writeJSONArtifact(validateOut, all); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "Validated %d units: %d errors, %d warnings\n",
		len(units), len(all.Errors()), len(all.Warnings()))
	return nil
}

// watchUnitsDir re-runs directory validation whenever a unit or deck file
// changes. Rapid write bursts from editors are debounced so a save touching
// several files triggers a single re-validation.
func watchUnitsDir(dir string, rs *config.Ruleset) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stdout, "Watching %s for changes (Ctrl+C to stop)...\n", dir)

	const debouncePeriod = 500 * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) {
				continue
			}
			name := event.Name
			if !strings.HasSuffix(name, ".unit.json") && !strings.HasSuffix(name, ".deck.json") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debouncePeriod, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			fmt.Fprintln(os.Stdout)
			if err := validateUnitsDir(dir, rs); err != nil {
				fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", watchErr)
		}
	}
}
