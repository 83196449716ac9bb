package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/ingest"
	"github.com/jonathan/lesson-factory/internal/schemas"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest lesson source material into an ordered item sequence",
	Long:  "Reads a text, markdown, or HTML source document, cleans it, splits it into items with stable sequential IDs, and writes the item batch as JSON.",
	RunE:  runIngest,
}

var (
	ingestSource string
	ingestOut    string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "Path to the source document (required)")
	ingestCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "Path to output items JSON file (required)")

	if err := ingestCmd.MarkFlagRequired("source"); err != nil {
		panic(fmt.Sprintf("failed to mark source flag as required: %v", err))
	}
	if err := ingestCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(ingestSource); os.IsNotExist(err) {
		return fmt.Errorf("source file not found: %s", ingestSource)
	}

	batch, err := ingest.FromFile(ingestSource)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(ingestOut)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := ingest.WriteItems(ingestOut, batch); err != nil {
		return fmt.Errorf("failed to write items: %w", err)
	}

	// Validate output against schema (non-fatal)
	schemaPath := schemas.ResolveSchemaPath("schemas/items.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, ingestOut); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: Generated items do not validate against schema: %v\n", err)
			}
		}
	}

	fmt.Fprintf(os.Stdout, "Successfully ingested %d items from %s\n", len(batch.Items), batch.Source)
	fmt.Fprintf(os.Stdout, "Items: %s\n", ingestOut)
	return nil
}
