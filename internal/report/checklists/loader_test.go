package checklists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForRule_KnownRule(t *testing.T) {
	checklist, err := ForRule("missing_field")
	require.NoError(t, err)
	assert.NotEmpty(t, checklist)
}

func TestForRule_UnknownRuleIsEmptyNotError(t *testing.T) {
	checklist, err := ForRule("rule_invented_tomorrow")
	require.NoError(t, err)
	assert.Empty(t, checklist)
}

func TestForRule_CachedAcrossCalls(t *testing.T) {
	first, err := ForRule("too_many_lines")
	require.NoError(t, err)
	second, err := ForRule("too_many_lines")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMustForRule_DoesNotPanicOnEmbeddedAsset(t *testing.T) {
	assert.NotPanics(t, func() {
		MustForRule("quota_below_minimum")
	})
}
