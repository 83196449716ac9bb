package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full lesson review pipeline end-to-end",
	Long: `Orchestrates the entire lesson review process: ingest -> classify -> load units -> review sections -> gate -> report -> archive.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runSource      string
	runUnitsDir    string
	runRuleset     string
	runStateDir    string
	runID          string
	runWorkers     int
	runResume      bool
	runVerbose     bool
	runDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSource, "source", "s", "", "Path to the lesson source material (txt, md, or html)")
	runCommand.Flags().StringVarP(&runUnitsDir, "units", "u", "", "Directory holding generated content units and decks")
	runCommand.Flags().StringVarP(&runRuleset, "ruleset", "r", "", "Path to a ruleset JSON file (defaults to the built-in ruleset)")
	runCommand.Flags().StringVar(&runStateDir, "state-dir", "", "Directory for pipeline state files")
	runCommand.Flags().StringVar(&runID, "run-id", "", "Run identifier (generated when omitted, required with --resume)")
	runCommand.Flags().IntVar(&runWorkers, "workers", 0, "Section worker pool size")
	runCommand.Flags().BoolVar(&runResume, "resume", false, "Resume a previous run from its recorded state")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for the run archive
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("source") {
		cfg.Source = runSource
	}
	if cmd.Flags().Changed("units") {
		cfg.UnitsDir = runUnitsDir
	}
	if cmd.Flags().Changed("ruleset") {
		cfg.Ruleset = runRuleset
	}
	if cmd.Flags().Changed("state-dir") {
		cfg.StateDir = runStateDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{
		StateDir: "state",
		Workers:  4,
	})

	// Validate required fields
	if cfg.Source == "" && !runResume {
		return fmt.Errorf("--source must be provided (via flag or config)")
	}
	if cfg.UnitsDir == "" {
		return fmt.Errorf("--units must be provided (via flag or config)")
	}
	if runResume && runID == "" {
		return fmt.Errorf("--run-id is required with --resume")
	}

	// Database URL handling (optional; the archive step is skipped without it)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	result, err := pipeline.RunPipeline(ctx, pipeline.RunOptions{
		SourcePath:  cfg.Source,
		UnitsDir:    cfg.UnitsDir,
		RulesetPath: cfg.Ruleset,
		StateDir:    cfg.StateDir,
		RunID:       runID,
		Workers:     cfg.Workers,
		Resume:      runResume,
		Verbose:     cfg.Verbose,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if !result.Passed {
		fmt.Fprintf(os.Stdout, "Remediation report has %d findings (severity %s)\n",
			result.Report.TotalFindings, result.Report.OverallSeverity)
	}
	return nil
}
