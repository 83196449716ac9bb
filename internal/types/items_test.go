// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewItem_WordCount(t *testing.T) {
	item := NewItem(1, "A derivative measures instantaneous rate of change")

	assert.Equal(t, 1, item.ID)
	assert.Equal(t, 7, item.WordCount)
}

func TestNewItem_EmptyText(t *testing.T) {
	item := NewItem(3, "")

	assert.Equal(t, 0, item.WordCount)
	assert.Equal(t, "", item.Text)
}

func TestItemBatch_IDs(t *testing.T) {
	batch := ItemBatch{
		Items: []Item{
			NewItem(1, "first fact"),
			NewItem(2, "second fact"),
			NewItem(3, "third fact"),
		},
	}

	assert.Equal(t, []int{1, 2, 3}, batch.IDs())
}
