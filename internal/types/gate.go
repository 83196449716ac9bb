// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Gate and quota statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// DimensionScore is one weighted dimension of a gate evaluation. Score is a
// deductive rubric value in [0, 100]; Weight is this dimension's share of the
// weighted total (weights sum to 1.0 across one gate).
type DimensionScore struct {
	Name       string      `json:"name"`
	Score      float64     `json:"score"`
	Weight     float64     `json:"weight"`
	Violations []Violation `json:"violations,omitempty"`
}

// GateResult is the aggregated quality-gate outcome for one section.
// AutoFails lists triggered automatic-fail conditions; any entry forces
// fail status regardless of the weighted total.
type GateResult struct {
	Category      string           `json:"category"`
	Status        string           `json:"status"`
	WeightedTotal float64          `json:"weighted_total"`
	Dimensions    []DimensionScore `json:"dimensions"`
	AutoFails     []string         `json:"auto_fails,omitempty"`
}

// Passed reports whether the gate allows the section through (warn included).
func (g *GateResult) Passed() bool {
	return g.Status == StatusPass || g.Status == StatusWarn
}

// QuotaResult is the outcome of checking a deck's special-slide quota against
// its size band. Deficit is how many special slides are missing when the
// status is fail; advisories are non-blocking distribution notes.
type QuotaResult struct {
	Category   string   `json:"category"`
	Status     string   `json:"status"`
	DeckSize   int      `json:"deck_size"`
	Special    int      `json:"special"`
	BandMin    int      `json:"band_min"`
	BandMax    int      `json:"band_max"`
	Minimum    int      `json:"minimum"`
	TargetMin  int      `json:"target_min"`
	TargetMax  int      `json:"target_max"`
	Deficit    int      `json:"deficit,omitempty"`
	Advisories []string `json:"advisories,omitempty"`
}
