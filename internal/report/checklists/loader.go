// Package checklists provides static remediation checklists per violation
// rule type. Checklists are stored as JSON and embedded at compile time.
package checklists

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed *.json
var checklistFiles embed.FS

// cache stores the parsed checklist table to avoid repeated JSON parsing
var (
	cache   map[string][]string
	cacheMu sync.RWMutex
)

// ForRule returns the remediation checklist for a rule type. Unknown rules
// get an empty checklist, not an error: every rule is reportable even when
// no canned remediation exists for it.
func ForRule(rule string) ([]string, error) {
	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	return table[rule], nil
}

// MustForRule returns the checklist for a rule type, panicking on a broken
// embedded asset. Use only at initialization time.
func MustForRule(rule string) []string {
	checklist, err := ForRule(rule)
	if err != nil {
		panic(fmt.Sprintf("failed to load checklists: %v", err))
	}
	return checklist
}

// loadTable loads and caches the embedded checklist table.
func loadTable() (map[string][]string, error) {
	cacheMu.RLock()
	if cache != nil {
		defer cacheMu.RUnlock()
		return cache, nil
	}
	cacheMu.RUnlock()

	data, err := checklistFiles.ReadFile("checklists.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read checklists asset: %w", err)
	}

	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse checklists asset: %w", err)
	}

	cacheMu.Lock()
	cache = table
	cacheMu.Unlock()

	return table, nil
}
