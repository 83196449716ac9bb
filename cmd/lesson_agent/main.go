// Package main provides the entry point for the lesson factory CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/logging"
)

var (
	logJSON  bool
	logDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "lesson_agent",
	Short: "Lesson Factory content pipeline",
	Long:  "Lesson Factory classifies lesson source material into category sections, validates generated content units against structural constraints, and gates each section's quality before release.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logging.Initialize(logJSON, logDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON instead of console output")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug-level logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	defer logging.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Cleanup()
		os.Exit(1)
	}
}
