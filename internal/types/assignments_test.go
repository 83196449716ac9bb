// Package types provides type definitions for structured data used throughout the lesson-factory system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignment_HasFlag(t *testing.T) {
	assignment := Assignment{
		ItemID:   4,
		Category: "foundations",
		RuleID:   "primary_routing",
		RuleTier: TierPrimary,
		Flags: []Flag{
			{Type: FlagFrontload},
			{Type: FlagXRef, Category: "techniques"},
		},
	}

	assert.True(t, assignment.HasFlag(FlagFrontload))
	assert.True(t, assignment.HasFlag(FlagXRef))
	assert.False(t, assignment.HasFlag(FlagAmbiguous))
}

func TestAssignmentSet_ByCategory(t *testing.T) {
	set := AssignmentSet{
		Assignments: []Assignment{
			{ItemID: 1, Category: "foundations"},
			{ItemID: 2, Category: "techniques"},
			{ItemID: 3, Category: "foundations"},
		},
	}

	grouped := set.ByCategory()
	assert.Len(t, grouped["foundations"], 2)
	assert.Len(t, grouped["techniques"], 1)
	assert.Equal(t, 1, grouped["foundations"][0].ItemID)
	assert.Equal(t, 3, grouped["foundations"][1].ItemID)
}
