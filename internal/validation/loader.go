package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/lesson-factory/internal/schemas"
	"github.com/jonathan/lesson-factory/internal/types"
)

// Unit directory layout: one <category>.unit.json and optionally one
// <category>.deck.json per category section.
const (
	unitSuffix = ".unit.json"
	deckSuffix = ".deck.json"
)

// checkDocumentSchema validates a loaded document against a repo schema.
// The check is skipped when the schema file cannot be located.
func checkDocumentSchema(schemaFile, docPath string) error {
	schemaPath := schemas.ResolveSchemaPath(filepath.Join("schemas", schemaFile))
	if schemaPath == "" {
		return nil
	}
	if err := schemas.ValidateJSON(schemaPath, docPath); err != nil {
		return &Error{
			Message: fmt.Sprintf("document %s failed schema check", docPath),
			Cause:   err,
		}
	}
	return nil
}

// LoadUnit reads a content unit document from disk, checking it against
// the content-unit schema before returning it.
func LoadUnit(path string) (*types.ContentUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{
			Message: fmt.Sprintf("failed to read unit file: %s", path),
			Cause:   err,
		}
	}

	var unit types.ContentUnit
	if err := json.Unmarshal(data, &unit); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("failed to parse unit file %s", path),
			Cause:   err,
		}
	}
	if err := checkDocumentSchema("content_unit.schema.json", path); err != nil {
		return nil, err
	}
	return &unit, nil
}

// LoadDeck reads a slide deck document from disk, checking it against the
// slide-deck schema before returning it.
func LoadDeck(path string) (*types.SlideDeck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{
			Message: fmt.Sprintf("failed to read deck file: %s", path),
			Cause:   err,
		}
	}

	var deck types.SlideDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("failed to parse deck file %s", path),
			Cause:   err,
		}
	}
	if err := checkDocumentSchema("slide_deck.schema.json", path); err != nil {
		return nil, err
	}
	return &deck, nil
}

// LoadUnitsDir loads every unit and deck document under dir, keyed by the
// category encoded in the filename.
func LoadUnitsDir(dir string) (map[string]*types.ContentUnit, map[string]*types.SlideDeck, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, &FileReadError{
			Message: fmt.Sprintf("failed to read units directory: %s", dir),
			Cause:   err,
		}
	}

	units := make(map[string]*types.ContentUnit)
	decks := make(map[string]*types.SlideDeck)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, unitSuffix):
			unit, err := LoadUnit(filepath.Join(dir, name))
			if err != nil {
				return nil, nil, err
			}
			units[strings.TrimSuffix(name, unitSuffix)] = unit
		case strings.HasSuffix(name, deckSuffix):
			deck, err := LoadDeck(filepath.Join(dir, name))
			if err != nil {
				return nil, nil, err
			}
			decks[strings.TrimSuffix(name, deckSuffix)] = deck
		}
	}

	return units, decks, nil
}
