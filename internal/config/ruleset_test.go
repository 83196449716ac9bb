package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleset_IsValid(t *testing.T) {
	rs := DefaultRuleset()
	require.NoError(t, rs.Validate())
	assert.Len(t, rs.Categories, 4)
	assert.Contains(t, rs.Limits, "lecture")
	assert.NotEmpty(t, rs.Quotas)
}

func TestRuleset_Validate_EmptyCatalog(t *testing.T) {
	rs := &Ruleset{}
	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog is empty")
}

func TestRuleset_Validate_DuplicateCategory(t *testing.T) {
	rs := DefaultRuleset()
	rs.Categories = append(rs.Categories, CategorySpec{ID: "foundations", Label: "Again"})

	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category")
}

func TestRuleset_Validate_WeightsMustSumToOne(t *testing.T) {
	rs := DefaultRuleset()
	rs.Gate.Dimensions[0].Weight = 0.5

	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights sum")
}

func TestRuleset_Validate_ThresholdOrder(t *testing.T) {
	rs := DefaultRuleset()
	rs.Gate.WarnThreshold = 90
	rs.Gate.PassThreshold = 80

	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warn_threshold")
}

func TestRuleset_Validate_NonContiguousBands(t *testing.T) {
	rs := DefaultRuleset()
	rs.Quotas = []QuotaBand{
		{MinSlides: 1, MaxSlides: 7, Minimum: 1, TargetMin: 1, TargetMax: 2},
		{MinSlides: 10, MaxSlides: 15, Minimum: 2, TargetMin: 3, TargetMax: 4},
	}

	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not contiguous")
}

func TestRuleset_Validate_BandOrdering(t *testing.T) {
	rs := DefaultRuleset()
	rs.Quotas = []QuotaBand{
		{MinSlides: 1, MaxSlides: 7, Minimum: 3, TargetMin: 2, TargetMax: 4},
	}

	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum <= target_min <= target_max")
}

func TestLoadRuleset_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruleset.json")
	content := `{
		"categories": [
			{"id": "a", "label": "A", "min_items": 1, "keywords": ["alpha"]},
			{"id": "b", "label": "B", "min_items": 1, "keywords": ["beta"]}
		],
		"quotas": [
			{"min_slides": 1, "max_slides": 10, "minimum": 1, "target_min": 1, "target_max": 3}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rs, err := LoadRuleset(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rs.CategoryIDs())
}

func TestLoadRuleset_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruleset.yaml")
	content := `
categories:
  - id: foundations
    label: Foundations
    min_items: 2
    keywords: [definition, principle]
  - id: techniques
    label: Techniques
    min_items: 2
    keywords: [method, procedure]
quotas:
  - min_slides: 1
    max_slides: 15
    minimum: 1
    target_min: 2
    target_max: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rs, err := LoadRuleset(path)
	require.NoError(t, err)
	require.Len(t, rs.Categories, 2)
	assert.Equal(t, 2, rs.Categories[0].MinItems)
	assert.Equal(t, "techniques", rs.Categories[1].ID)
}

func TestLoadRuleset_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruleset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories": []}`), 0644))

	_, err := LoadRuleset(path)
	assert.Error(t, err)
}

func TestRuleset_CategoryByID(t *testing.T) {
	rs := DefaultRuleset()
	cat := rs.CategoryByID("techniques")
	require.NotNil(t, cat)
	assert.Equal(t, "Techniques", cat.Label)
	assert.Nil(t, rs.CategoryByID("missing"))
}
