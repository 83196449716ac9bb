package classify

import (
	"fmt"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

// deriveFlags computes the assignment's annotations. Flags never change the
// category decision; they only carry context for downstream stages.
func deriveFlags(item types.Item, rs *config.Ruleset, cx *BatchContext,
	assignment types.Assignment, decision Decision, rule Rule, records []supportRecord) []types.Flag {

	var flags []types.Flag

	if cx.DefinesReferencedTerm(item.ID) {
		flags = append(flags, types.Flag{Type: types.FlagFrontload})
	}

	if rule.Tier == types.TierTertiary {
		if runnerUp := detectAmbiguity(assignment.Category, cx, item.ID, rs, records); runnerUp != "" {
			flags = append(flags, types.Flag{
				Type: types.FlagAmbiguous,
				Rationale: fmt.Sprintf("tie between %s and %s resolved by %s: %s",
					assignment.Category, runnerUp, rule.ID, decision.Rationale),
				Category: runnerUp,
			})
		}
	}

	if xref := detectXRef(assignment.Category, cx, item.ID, rs); xref != "" {
		flags = append(flags, types.Flag{Type: types.FlagXRef, Category: xref})
	}

	return flags
}

// detectAmbiguity reports the runner-up category when at least two distinct
// earlier tiers supported different categories before the tertiary tie-break
// fired. Returns "" when the decision was never contested across tiers.
func detectAmbiguity(final string, cx *BatchContext, itemID int, rs *config.Ruleset, records []supportRecord) string {
	supportByTier := make(map[string]map[string]bool)
	for _, rec := range records {
		if supportByTier[rec.tier] == nil {
			supportByTier[rec.tier] = make(map[string]bool)
		}
		for _, cat := range rec.categories {
			supportByTier[rec.tier][cat] = true
		}
	}
	if len(supportByTier) < 2 {
		return ""
	}

	// Two tiers contested the decision only if they supported different
	// categories, not just the same candidate twice.
	contested := false
	for tierA, catsA := range supportByTier {
		for tierB, catsB := range supportByTier {
			if tierA == tierB {
				continue
			}
			for cat := range catsA {
				if !catsB[cat] {
					contested = true
				}
			}
		}
	}
	if !contested {
		return ""
	}

	// Runner-up: the strongest supported category that lost, catalog order
	// breaking affinity ties so the rationale is deterministic.
	runnerUp := ""
	best := -1
	for _, cat := range rs.Categories {
		if cat.ID == final {
			continue
		}
		supported := false
		for _, cats := range supportByTier {
			if cats[cat.ID] {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		if affinity := cx.Affinity(itemID, cat.ID); affinity > best {
			best = affinity
			runnerUp = cat.ID
		}
	}
	return runnerUp
}

// detectXRef returns the secondary category whose affinity reaches the
// configured share of the primary's, or "" when the item is single-subject.
func detectXRef(primary string, cx *BatchContext, itemID int, rs *config.Ruleset) string {
	primaryAffinity := cx.Affinity(itemID, primary)
	if primaryAffinity == 0 || rs.Classifier.XRefShare <= 0 {
		return ""
	}
	threshold := rs.Classifier.XRefShare * float64(primaryAffinity)
	for _, cat := range rs.Categories {
		if cat.ID == primary {
			continue
		}
		affinity := cx.Affinity(itemID, cat.ID)
		if affinity > 0 && float64(affinity) >= threshold {
			return cat.ID
		}
	}
	return ""
}
