// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Source   string `json:"source,omitempty"`    // Path to the source material (txt, md, or html)
	Items    string `json:"items,omitempty"`     // Path to a pre-ingested items JSON file
	UnitsDir string `json:"units_dir,omitempty"` // Directory holding generated content units and decks
	Ruleset  string `json:"ruleset,omitempty"`   // Path to the ruleset file (JSON or YAML)
	StateDir string `json:"state_dir,omitempty"` // Directory for pipeline state files

	// Behavior
	Workers     int    `json:"workers,omitempty"`      // Section worker pool size
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for the run archive
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Source != "" && c.Items != "" {
		return fmt.Errorf("config error: 'source' and 'items' are mutually exclusive")
	}

	// Validate numeric ranges
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Source != "" {
		if _, err := os.Stat(c.Source); os.IsNotExist(err) {
			return fmt.Errorf("config error: source file not found: %s", c.Source)
		}
	}

	if c.Items != "" {
		if _, err := os.Stat(c.Items); os.IsNotExist(err) {
			return fmt.Errorf("config error: items file not found: %s", c.Items)
		}
	}

	if c.Ruleset != "" {
		if _, err := os.Stat(c.Ruleset); os.IsNotExist(err) {
			return fmt.Errorf("config error: ruleset file not found: %s", c.Ruleset)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Source == "" {
		result.Source = defaults.Source
	}
	if result.Items == "" {
		result.Items = defaults.Items
	}
	if result.UnitsDir == "" {
		result.UnitsDir = defaults.UnitsDir
	}
	if result.Ruleset == "" {
		result.Ruleset = defaults.Ruleset
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.Workers == 0 {
		if defaults.Workers > 0 {
			result.Workers = defaults.Workers
		} else {
			result.Workers = 4
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
