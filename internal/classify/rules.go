package classify

import (
	"fmt"
	"strings"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

// Decision is one rule's verdict for one item. A non-empty Category is
// decisive and stops the cascade; Supported lists every category the rule
// found evidence for, decisive or not, and feeds ambiguity detection.
type Decision struct {
	Category  string
	Supported []string
	Rationale string
}

// Rule is a pure predicate over an item and the batch context. Rules are
// evaluated strictly in declared order; list position is the only priority.
type Rule struct {
	ID   string
	Tier string
	Eval func(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision
}

// defaultRules returns the cascade in evaluation order: the primary routing
// table, the three secondary focus heuristics, then the tertiary tie-breaks.
// The final rule always decides, so classification always terminates.
func defaultRules() []Rule {
	return []Rule{
		{ID: "primary_routing", Tier: types.TierPrimary, Eval: evalPrimaryRouting},
		{ID: "secondary_technique", Tier: types.TierSecondary, Eval: focusRule(config.FocusTechnique, techniqueCues, "technique")},
		{ID: "secondary_history", Tier: types.TierSecondary, Eval: focusRule(config.FocusHistory, historyCues, "historical")},
		{ID: "secondary_population", Tier: types.TierSecondary, Eval: focusRule(config.FocusPopulation, populationCues, "population")},
		{ID: "tertiary_foundation", Tier: types.TierTertiary, Eval: evalTertiaryFoundation},
		{ID: "tertiary_dominance", Tier: types.TierTertiary, Eval: evalTertiaryDominance},
		{ID: "tertiary_forced", Tier: types.TierTertiary, Eval: evalTertiaryForced},
	}
}

// evalPrimaryRouting is the coarse subject-matter match: keyword hits against
// the routing table. Decisive only when exactly one category has hits.
func evalPrimaryRouting(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision {
	ranked := cx.rankedAffinity(item.ID, rs)
	switch len(ranked) {
	case 0:
		return Decision{}
	case 1:
		return Decision{
			Category:  ranked[0],
			Supported: ranked,
			Rationale: fmt.Sprintf("routing table matched only %s", ranked[0]),
		}
	default:
		return Decision{Supported: ranked}
	}
}

// focusRule builds a secondary heuristic: when the item text carries one of
// the focus cues and the catalog declares a category with that focus role,
// the item routes there. The rule is only decisive while no other category
// strictly dominates the focus target in the routing table; a dominated cue
// match is recorded as support and left for the tertiary tie-breaks.
func focusRule(focus string, cues func(*config.Ruleset) []string, label string) func(types.Item, *config.Ruleset, *BatchContext) Decision {
	return func(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision {
		cue := firstCue(item.Text, cues(rs))
		if cue == "" {
			return Decision{}
		}
		target := categoryWithFocus(rs, focus)
		if target == "" {
			return Decision{}
		}

		targetAffinity := cx.Affinity(item.ID, target)
		for _, cat := range rs.Categories {
			if cat.ID != target && cx.Affinity(item.ID, cat.ID) > targetAffinity {
				return Decision{Supported: []string{target}}
			}
		}

		return Decision{
			Category:  target,
			Supported: []string{target},
			Rationale: fmt.Sprintf("%s focus cue %q", label, cue),
		}
	}
}

func techniqueCues(rs *config.Ruleset) []string  { return rs.Classifier.TechniqueCues }
func historyCues(rs *config.Ruleset) []string    { return rs.Classifier.HistoryCues }
func populationCues(rs *config.Ruleset) []string { return rs.Classifier.PopulationCues }

// evalTertiaryFoundation is the best-foundation test: an item that defines a
// term other items depend on belongs with the foundational material.
func evalTertiaryFoundation(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision {
	if !cx.DefinesReferencedTerm(item.ID) {
		return Decision{}
	}
	target := categoryWithFocus(rs, config.FocusFoundation)
	if target == "" {
		return Decision{}
	}
	return Decision{
		Category:  target,
		Supported: []string{target},
		Rationale: "defines a term other items depend on",
	}
}

// evalTertiaryDominance decides when one category's affinity strictly
// dominates all others.
func evalTertiaryDominance(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision {
	ranked := cx.rankedAffinity(item.ID, rs)
	if len(ranked) < 2 {
		return Decision{}
	}
	top := cx.Affinity(item.ID, ranked[0])
	second := cx.Affinity(item.ID, ranked[1])
	if top > second {
		return Decision{
			Category:  ranked[0],
			Supported: ranked,
			Rationale: fmt.Sprintf("affinity %d dominates next best %d", top, second),
		}
	}
	return Decision{Supported: ranked}
}

// evalTertiaryForced is the terminal forced choice: the single most testable
// fact reading. It always yields a category, so no item is ever left
// unassigned.
func evalTertiaryForced(item types.Item, rs *config.Ruleset, cx *BatchContext) Decision {
	ranked := cx.rankedAffinity(item.ID, rs)
	if len(ranked) > 0 {
		return Decision{
			Category:  ranked[0],
			Supported: ranked,
			Rationale: fmt.Sprintf("forced choice by affinity with catalog order tie-break (%s)", ranked[0]),
		}
	}
	first := rs.Categories[0].ID
	return Decision{
		Category:  first,
		Supported: []string{first},
		Rationale: fmt.Sprintf("no affinity signal; defaulting to first catalog category (%s)", first),
	}
}

// firstCue returns the first cue found in the text, preserving cue list order.
func firstCue(text string, cues []string) string {
	lower := strings.ToLower(text)
	for _, cue := range cues {
		if cue != "" && strings.Contains(lower, strings.ToLower(cue)) {
			return cue
		}
	}
	return ""
}

// categoryWithFocus returns the first catalog category declaring the focus
// role, or "".
func categoryWithFocus(rs *config.Ruleset, focus string) string {
	for _, cat := range rs.Categories {
		if cat.Focus == focus {
			return cat.ID
		}
	}
	return ""
}
