// Package quota evaluates a slide deck's special-slide count against the
// size-band quota table.
package quota

import (
	"fmt"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/types"
)

// Error represents a quota evaluation failure, distinct from a quota FAIL
// result which is a normal structured outcome.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("quota error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("quota error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Check evaluates one deck against the quota table: select the band
// containing the deck size, then compare the special-slide count against the
// band's minimum and target range. Below minimum fails with a deficit;
// outside [targetMin, targetMax] warns; inside passes.
func Check(deckSize, specialCount int, rs *config.Ruleset) (*types.QuotaResult, error) {
	if deckSize < 1 {
		return nil, &Error{Message: fmt.Sprintf("deck size must be positive, got %d", deckSize)}
	}
	if specialCount < 0 {
		return nil, &Error{Message: fmt.Sprintf("special count must be non-negative, got %d", specialCount)}
	}
	if specialCount > deckSize {
		return nil, &Error{Message: fmt.Sprintf("special count %d exceeds deck size %d", specialCount, deckSize)}
	}

	band, err := bandFor(deckSize, rs.Quotas)
	if err != nil {
		return nil, err
	}

	result := &types.QuotaResult{
		DeckSize:  deckSize,
		Special:   specialCount,
		BandMin:   band.MinSlides,
		BandMax:   band.MaxSlides,
		Minimum:   band.Minimum,
		TargetMin: band.TargetMin,
		TargetMax: band.TargetMax,
	}

	switch {
	case specialCount < band.Minimum:
		result.Status = types.StatusFail
		result.Deficit = band.Minimum - specialCount
	case specialCount < band.TargetMin || specialCount > band.TargetMax:
		result.Status = types.StatusWarn
	default:
		result.Status = types.StatusPass
	}

	return result, nil
}

// CheckDeck evaluates a deck document, counting its exercise slides and
// adding the variant-diversity advisory.
func CheckDeck(deck *types.SlideDeck, rs *config.Ruleset) (*types.QuotaResult, error) {
	if deck == nil {
		return nil, &Error{Message: "deck is nil"}
	}

	special := deck.ExerciseSlides()
	result, err := Check(len(deck.Slides), len(special), rs)
	if err != nil {
		return nil, err
	}
	result.Category = deck.Category

	// Diversity is advisory only: a deck whose exercises all share one
	// variant is flagged for attention, never failed.
	if variant, uniform := uniformVariant(special); uniform && len(special) > 2 {
		result.Advisories = append(result.Advisories,
			fmt.Sprintf("all %d exercise slides share variant %q; vary exercise types", len(special), variant))
	}

	return result, nil
}

// bandFor returns the quota band containing the deck size. The ruleset
// validator guarantees bands are contiguous and non-overlapping.
func bandFor(deckSize int, bands []config.QuotaBand) (config.QuotaBand, error) {
	for _, band := range bands {
		if deckSize >= band.MinSlides && deckSize <= band.MaxSlides {
			return band, nil
		}
	}
	return config.QuotaBand{}, &Error{
		Message: fmt.Sprintf("no quota band covers deck size %d", deckSize),
	}
}

// uniformVariant reports whether all slides share one non-empty variant.
func uniformVariant(slides []types.Slide) (string, bool) {
	if len(slides) == 0 {
		return "", false
	}
	variant := slides[0].Variant
	for _, s := range slides[1:] {
		if s.Variant != variant {
			return "", false
		}
	}
	return variant, variant != ""
}
