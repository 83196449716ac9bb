// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category focus roles referenced by the secondary and tertiary rule tiers.
// A catalog binds roles to categories; the rules only know the role names.
const (
	FocusFoundation = "foundation"
	FocusTechnique  = "technique"
	FocusHistory    = "history"
	FocusPopulation = "population"
)

// CategorySpec describes one entry of the category catalog. Categories are
// configuration, not code: rule logic reads the catalog it is handed, and the
// optional focus role tells the heuristics which category answers which cue.
type CategorySpec struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	MinItems int      `json:"min_items" yaml:"min_items"`
	Focus    string   `json:"focus,omitempty" yaml:"focus,omitempty"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// MarkerRule requires a marker token to appear at least Min times in a field.
type MarkerRule struct {
	Token string `json:"token" yaml:"token"`
	Min   int    `json:"min" yaml:"min"`
}

// FieldLimits holds the structural limits for one named field of a unit type.
// A zero limit means the check is not applied to this field.
type FieldLimits struct {
	Required     bool         `json:"required" yaml:"required"`
	MaxLines     int          `json:"max_lines,omitempty" yaml:"max_lines,omitempty"`
	MaxLineChars int          `json:"max_line_chars,omitempty" yaml:"max_line_chars,omitempty"`
	MinWords     int          `json:"min_words,omitempty" yaml:"min_words,omitempty"`
	MaxWords     int          `json:"max_words,omitempty" yaml:"max_words,omitempty"`
	Markers      []MarkerRule `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// UnitLimits holds the limits table for one unit type: per-field limits plus
// the allowed declared duration range.
type UnitLimits struct {
	Fields     map[string]FieldLimits `json:"fields" yaml:"fields"`
	MinMinutes int                    `json:"min_minutes,omitempty" yaml:"min_minutes,omitempty"`
	MaxMinutes int                    `json:"max_minutes,omitempty" yaml:"max_minutes,omitempty"`
}

// QuotaBand maps a deck-size range to its special-slide requirements.
// Bands must be contiguous and non-overlapping across the table.
type QuotaBand struct {
	MinSlides int `json:"min_slides" yaml:"min_slides"`
	MaxSlides int `json:"max_slides" yaml:"max_slides"`
	Minimum   int `json:"minimum" yaml:"minimum"`
	TargetMin int `json:"target_min" yaml:"target_min"`
	TargetMax int `json:"target_max" yaml:"target_max"`
}

// DimensionSpec declares one weighted gate dimension. Floor is the score
// below which the dimension triggers an automatic fail.
type DimensionSpec struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
	Floor  float64 `json:"floor" yaml:"floor"`
}

// GateSpec holds the quality-gate configuration: dimension weights, status
// thresholds, and per-violation-class score penalties.
type GateSpec struct {
	Dimensions    []DimensionSpec    `json:"dimensions" yaml:"dimensions"`
	PassThreshold float64            `json:"pass_threshold" yaml:"pass_threshold"`
	WarnThreshold float64            `json:"warn_threshold" yaml:"warn_threshold"`
	Penalties     map[string]float64 `json:"penalties" yaml:"penalties"`
}

// ClassifierSpec holds the lexical cue lists for the secondary rule tier and
// the affinity share at which a secondary category earns an xref flag.
type ClassifierSpec struct {
	TechniqueCues  []string `json:"technique_cues" yaml:"technique_cues"`
	HistoryCues    []string `json:"history_cues" yaml:"history_cues"`
	PopulationCues []string `json:"population_cues" yaml:"population_cues"`
	XRefShare      float64  `json:"xref_share" yaml:"xref_share"`
}

// Ruleset is the single canonical configuration source for every component:
// the category catalog, the limits table, the quota table, the gate spec,
// and the classifier cues. Components look values up here and never keep
// their own copies of these constants.
type Ruleset struct {
	Categories []CategorySpec        `json:"categories" yaml:"categories"`
	Limits     map[string]UnitLimits `json:"limits" yaml:"limits"`
	Quotas     []QuotaBand           `json:"quotas" yaml:"quotas"`
	Gate       GateSpec              `json:"gate" yaml:"gate"`
	Classifier ClassifierSpec        `json:"classifier" yaml:"classifier"`
}

// LoadRuleset loads a ruleset from a JSON or YAML file, selected by
// extension, and validates it.
func LoadRuleset(path string) (*Ruleset, error) {
	if path == "" {
		return nil, fmt.Errorf("ruleset path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file %s: %w", path, err)
	}

	var rs Ruleset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset JSON: %w", err)
		}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	return &rs, nil
}

// Validate checks the ruleset's internal consistency: a usable catalog,
// gate weights summing to 1.0, ordered thresholds, and a contiguous
// non-overlapping quota table.
func (r *Ruleset) Validate() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("ruleset error: category catalog is empty")
	}

	validFocus := map[string]bool{
		"": true, FocusFoundation: true, FocusTechnique: true,
		FocusHistory: true, FocusPopulation: true,
	}
	seen := make(map[string]bool)
	for _, cat := range r.Categories {
		if cat.ID == "" {
			return fmt.Errorf("ruleset error: category with empty id")
		}
		if seen[cat.ID] {
			return fmt.Errorf("ruleset error: duplicate category id %q", cat.ID)
		}
		seen[cat.ID] = true
		if cat.MinItems < 0 {
			return fmt.Errorf("ruleset error: category %q has negative min_items", cat.ID)
		}
		if !validFocus[cat.Focus] {
			return fmt.Errorf("ruleset error: category %q has unknown focus %q", cat.ID, cat.Focus)
		}
	}

	if len(r.Gate.Dimensions) > 0 {
		var sum float64
		for _, dim := range r.Gate.Dimensions {
			if dim.Weight < 0 {
				return fmt.Errorf("ruleset error: dimension %q has negative weight", dim.Name)
			}
			if dim.Floor < 0 || dim.Floor > 100 {
				return fmt.Errorf("ruleset error: dimension %q floor out of range: %v", dim.Name, dim.Floor)
			}
			sum += dim.Weight
		}
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("ruleset error: dimension weights sum to %v, expected 1.0", sum)
		}
		if r.Gate.WarnThreshold > r.Gate.PassThreshold {
			return fmt.Errorf("ruleset error: warn_threshold %v exceeds pass_threshold %v",
				r.Gate.WarnThreshold, r.Gate.PassThreshold)
		}
		for class, penalty := range r.Gate.Penalties {
			if penalty < 0 {
				return fmt.Errorf("ruleset error: penalty for %q is negative", class)
			}
		}
	}

	for i, band := range r.Quotas {
		if band.MinSlides > band.MaxSlides {
			return fmt.Errorf("ruleset error: quota band %d has min_slides > max_slides", i)
		}
		if band.Minimum < 0 || band.TargetMin < band.Minimum || band.TargetMax < band.TargetMin {
			return fmt.Errorf("ruleset error: quota band %d requires minimum <= target_min <= target_max", i)
		}
		if i > 0 {
			prev := r.Quotas[i-1]
			if band.MinSlides != prev.MaxSlides+1 {
				return fmt.Errorf("ruleset error: quota bands %d and %d are not contiguous", i-1, i)
			}
		}
	}

	if r.Classifier.XRefShare < 0 || r.Classifier.XRefShare > 1 {
		return fmt.Errorf("ruleset error: xref_share out of range: %v", r.Classifier.XRefShare)
	}

	return nil
}

// CategoryByID returns the catalog entry for an identifier, or nil.
func (r *Ruleset) CategoryByID(id string) *CategorySpec {
	for i := range r.Categories {
		if r.Categories[i].ID == id {
			return &r.Categories[i]
		}
	}
	return nil
}

// CategoryIDs returns the catalog's identifiers in declared order.
func (r *Ruleset) CategoryIDs() []string {
	ids := make([]string, len(r.Categories))
	for i, cat := range r.Categories {
		ids[i] = cat.ID
	}
	return ids
}

// DefaultRuleset returns the built-in ruleset used when no file is given.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Categories: []CategorySpec{
			{
				ID: "foundations", Label: "Foundations", MinItems: 3, Focus: FocusFoundation,
				Keywords: []string{"definition", "principle", "theorem", "axiom", "concept", "property", "law"},
			},
			{
				ID: "techniques", Label: "Techniques", MinItems: 3, Focus: FocusTechnique,
				Keywords: []string{"method", "procedure", "algorithm", "technique", "steps", "compute", "solve"},
			},
			{
				ID: "applications", Label: "Applications", MinItems: 3, Focus: FocusPopulation,
				Keywords: []string{"application", "used in", "real-world", "industry", "example", "practice", "applied"},
			},
			{
				ID: "context", Label: "History & Context", MinItems: 3, Focus: FocusHistory,
				Keywords: []string{"history", "discovered", "century", "origin", "developed", "named after", "era"},
			},
		},
		Limits: map[string]UnitLimits{
			"lecture": {
				Fields: map[string]FieldLimits{
					"title":    {Required: true, MaxLines: 1, MaxLineChars: 80, MinWords: 2, MaxWords: 12},
					"overview": {Required: true, MaxLines: 3, MaxLineChars: 100, MinWords: 10, MaxWords: 60},
					"body":     {Required: true, MaxLines: 8, MaxLineChars: 120, MinWords: 40, MaxWords: 220},
					"speaker_notes": {
						MaxLines: 12, MaxLineChars: 120,
						Markers: []MarkerRule{{Token: "[PAUSE]", Min: 2}},
					},
				},
				MinMinutes: 8, MaxMinutes: 20,
			},
			"worked_example": {
				Fields: map[string]FieldLimits{
					"title": {Required: true, MaxLines: 1, MaxLineChars: 80, MinWords: 2, MaxWords: 12},
					"body": {
						Required: true, MaxLines: 12, MaxLineChars: 120, MinWords: 30, MaxWords: 200,
						Markers: []MarkerRule{{Token: "[STEP]", Min: 2}},
					},
				},
				MinMinutes: 5, MaxMinutes: 15,
			},
			"drill": {
				Fields: map[string]FieldLimits{
					"title": {Required: true, MaxLines: 1, MaxLineChars: 80, MinWords: 2, MaxWords: 12},
					"body": {
						Required: true, MaxLines: 10, MaxLineChars: 120, MinWords: 20, MaxWords: 160,
						Markers: []MarkerRule{{Token: "[CHECK]", Min: 1}},
					},
				},
				MinMinutes: 3, MaxMinutes: 10,
			},
			"recap": {
				Fields: map[string]FieldLimits{
					"title": {Required: true, MaxLines: 1, MaxLineChars: 80, MinWords: 2, MaxWords: 12},
					"body":  {Required: true, MaxLines: 6, MaxLineChars: 120, MinWords: 15, MaxWords: 120},
				},
				MinMinutes: 2, MaxMinutes: 8,
			},
		},
		Quotas: []QuotaBand{
			{MinSlides: 1, MaxSlides: 7, Minimum: 1, TargetMin: 1, TargetMax: 2},
			{MinSlides: 8, MaxSlides: 11, Minimum: 1, TargetMin: 2, TargetMax: 3},
			{MinSlides: 12, MaxSlides: 15, Minimum: 2, TargetMin: 3, TargetMax: 4},
			{MinSlides: 16, MaxSlides: 20, Minimum: 3, TargetMin: 4, TargetMax: 5},
			{MinSlides: 21, MaxSlides: 30, Minimum: 4, TargetMin: 5, TargetMax: 7},
		},
		Gate: GateSpec{
			Dimensions: []DimensionSpec{
				{Name: "structure", Weight: 0.35, Floor: 40},
				{Name: "content", Weight: 0.30, Floor: 40},
				{Name: "distribution", Weight: 0.20, Floor: 30},
				{Name: "coverage", Weight: 0.15, Floor: 0},
			},
			PassThreshold: 85,
			WarnThreshold: 70,
			Penalties: map[string]float64{
				"error":   15,
				"warning": 5,
			},
		},
		Classifier: ClassifierSpec{
			TechniqueCues:  []string{"how to", "step", "apply", "calculate", "derive", "use the", "procedure"},
			HistoryCues:    []string{"in 1", "in 2", "century", "historically", "was first", "originally"},
			PopulationCues: []string{"students", "beginners", "learners", "practitioners", "audience"},
			XRefShare:      0.6,
		},
	}
}
