// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Unit types recognized by the limits table.
const (
	UnitLecture       = "lecture"
	UnitWorkedExample = "worked_example"
	UnitDrill         = "drill"
	UnitRecap         = "recap"
)

// Slide kinds.
const (
	SlideContent  = "content"
	SlideExercise = "exercise"
)

// ContentUnit is one generated artifact for a category: a set of named text
// fields plus a declared unit type and duration. Fields are measured by the
// constraint validator; the unit itself is produced externally.
type ContentUnit struct {
	Category        string            `json:"category"`
	UnitType        string            `json:"unit_type"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	Fields          map[string]string `json:"fields"`
}

// FieldText returns the text of a named field and whether it is present
// with non-empty content.
func (u *ContentUnit) FieldText(name string) (string, bool) {
	text, ok := u.Fields[name]
	if !ok {
		return "", false
	}
	return text, text != ""
}

// Slide is one entry in a section's deck. Exercise slides carry a variant
// (multiple_choice, fill_blank, discussion, ...) used for diversity advisories.
type Slide struct {
	Kind    string `json:"kind"`
	Variant string `json:"variant,omitempty"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
}

// SlideDeck is the generated slide collection for one category section.
type SlideDeck struct {
	Category string  `json:"category"`
	Slides   []Slide `json:"slides"`
}

// ExerciseSlides returns the deck's exercise slides in order.
func (d *SlideDeck) ExerciseSlides() []Slide {
	var out []Slide
	for _, s := range d.Slides {
		if s.Kind == SlideExercise {
			out = append(out, s)
		}
	}
	return out
}
