package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

// definitionPattern matches "X is/are/means/refers to ..." openings, capturing
// the defined term.
var definitionPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9' -]{1,40}?)\s+(?:is|are|means|refers to)\s+`)

// BatchContext carries the batch-level facts each rule may consult: lexical
// affinity per item and category, and the term-dependency graph used by the
// frontload flag and the foundation tie-break.
type BatchContext struct {
	// affinity[itemID][categoryID] = number of catalog keywords found in the item
	affinity map[int]map[string]int

	// definedTerms[itemID] = terms this item defines
	definedTerms map[int][]string

	// referencedBy[itemID] = how many other items reference a term defined here
	referencedBy map[int]int
}

// buildBatchContext pre-scans the whole batch. Rules stay pure functions over
// this context, which keeps classification deterministic and item-order free.
func buildBatchContext(items []types.Item, rs *config.Ruleset) *BatchContext {
	cx := &BatchContext{
		affinity:     make(map[int]map[string]int, len(items)),
		definedTerms: make(map[int][]string),
		referencedBy: make(map[int]int),
	}

	for _, item := range items {
		lower := strings.ToLower(item.Text)

		scores := make(map[string]int, len(rs.Categories))
		for _, cat := range rs.Categories {
			hits := 0
			for _, kw := range cat.Keywords {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					hits++
				}
			}
			if hits > 0 {
				scores[cat.ID] = hits
			}
		}
		cx.affinity[item.ID] = scores

		if term := extractDefinedTerm(item.Text); term != "" {
			cx.definedTerms[item.ID] = append(cx.definedTerms[item.ID], term)
		}
	}

	// Count cross-references: an item that uses a term defined elsewhere makes
	// the defining item a frontload candidate.
	for _, definer := range items {
		terms := cx.definedTerms[definer.ID]
		if len(terms) == 0 {
			continue
		}
		for _, other := range items {
			if other.ID == definer.ID {
				continue
			}
			lower := strings.ToLower(other.Text)
			for _, term := range terms {
				if strings.Contains(lower, strings.ToLower(term)) {
					cx.referencedBy[definer.ID]++
					break
				}
			}
		}
	}

	return cx
}

// extractDefinedTerm pulls the term out of a definitional sentence, or
// returns "" when the item does not define anything.
func extractDefinedTerm(text string) string {
	match := definitionPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return ""
	}
	term := strings.TrimSpace(match[1])
	// Single stop-words are noise, not terms.
	if len(term) < 3 || strings.EqualFold(term, "it") || strings.EqualFold(term, "this") ||
		strings.EqualFold(term, "there") || strings.EqualFold(term, "that") {
		return ""
	}
	return term
}

// Affinity returns the keyword-hit count for an item and category.
func (cx *BatchContext) Affinity(itemID int, categoryID string) int {
	return cx.affinity[itemID][categoryID]
}

// DefinesReferencedTerm reports whether the item defines a term at least one
// other item depends on.
func (cx *BatchContext) DefinesReferencedTerm(itemID int) bool {
	return cx.referencedBy[itemID] > 0
}

// rankedAffinity returns the item's categories ordered by descending affinity,
// with catalog order breaking ties. Categories with zero affinity are omitted.
func (cx *BatchContext) rankedAffinity(itemID int, rs *config.Ruleset) []string {
	var ranked []string
	for _, cat := range rs.Categories {
		if cx.affinity[itemID][cat.ID] > 0 {
			ranked = append(ranked, cat.ID)
		}
	}
	// Stable sort keeps catalog order as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return cx.affinity[itemID][ranked[i]] > cx.affinity[itemID][ranked[j]]
	})
	return ranked
}
