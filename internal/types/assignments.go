// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Rule tiers, in evaluation order.
const (
	TierPrimary   = "primary"
	TierSecondary = "secondary"
	TierTertiary  = "tertiary"
)

// Flag types attached to assignments.
const (
	FlagFrontload = "frontload"
	FlagAmbiguous = "ambiguous"
	FlagXRef      = "xref"
)

// Flag annotates an assignment without changing the category decision.
// Ambiguous flags carry a rationale naming the runner-up category; xref
// flags carry the secondary category's identifier.
type Flag struct {
	Type      string `json:"type"`
	Rationale string `json:"rationale,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Assignment maps one item to exactly one category, recording which rule
// decided and any flags derived during classification.
type Assignment struct {
	ItemID   int    `json:"item_id"`
	Category string `json:"category"`
	RuleID   string `json:"rule_id"`
	RuleTier string `json:"rule_tier"`
	Flags    []Flag `json:"flags,omitempty"`
}

// HasFlag reports whether the assignment carries a flag of the given type.
func (a *Assignment) HasFlag(flagType string) bool {
	for _, f := range a.Flags {
		if f.Type == flagType {
			return true
		}
	}
	return false
}

// AssignmentSet is the batch classification result: every input item appears
// exactly once, together with per-category counts and any categories left
// under their configured minimum population.
type AssignmentSet struct {
	Assignments    []Assignment   `json:"assignments"`
	CategoryCounts map[string]int `json:"category_counts"`
	UnderPopulated []string       `json:"under_populated,omitempty"`
}

// ByCategory groups the assignments by category identifier.
func (s *AssignmentSet) ByCategory() map[string][]Assignment {
	grouped := make(map[string][]Assignment)
	for _, a := range s.Assignments {
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	return grouped
}
