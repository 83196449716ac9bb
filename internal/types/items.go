// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Item represents one atomic piece of source content subject to classification.
// Items are created once during ingestion and never mutated afterward.
type Item struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// ItemBatch represents the full ordered sequence of items for one run.
type ItemBatch struct {
	Source string `json:"source,omitempty"`
	Items  []Item `json:"items"`
}

// NewItem builds an item from raw text, computing its word count.
func NewItem(id int, text string) Item {
	return Item{
		ID:        id,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}
}

// IDs returns the item identifiers in batch order.
func (b *ItemBatch) IDs() []int {
	ids := make([]int, len(b.Items))
	for i, item := range b.Items {
		ids[i] = item.ID
	}
	return ids
}
