package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/lesson-factory/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaFiles = []string{
	"pipeline_state.schema.json",
	"content_unit.schema.json",
	"items.schema.json",
	"slide_deck.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_DeclareDraftAndType(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj))

			assert.Contains(t, schemaObj, "$schema")
			assert.Equal(t, "object", schemaObj["type"])
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestPipelineStateSchema_AcceptsFreshRecord(t *testing.T) {
	schemaContent, err := os.ReadFile("pipeline_state.schema.json")
	require.NoError(t, err)

	record := `{
		"run_id": "run-001",
		"status": "pending",
		"sections": {},
		"created_at": "2026-08-28T10:00:00Z",
		"updated_at": "2026-08-28T10:00:00Z"
	}`
	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), record))
}

func TestPipelineStateSchema_RejectsUnknownStatus(t *testing.T) {
	schemaContent, err := os.ReadFile("pipeline_state.schema.json")
	require.NoError(t, err)

	record := `{
		"run_id": "run-001",
		"status": "paused",
		"sections": {},
		"created_at": "2026-08-28T10:00:00Z",
		"updated_at": "2026-08-28T10:00:00Z"
	}`
	err = schemas.ValidateJSONString(string(schemaContent), record)
	require.Error(t, err)
	var verr *schemas.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestContentUnitSchema_AcceptsLecture(t *testing.T) {
	schemaContent, err := os.ReadFile("content_unit.schema.json")
	require.NoError(t, err)

	unit := `{
		"category": "foundations",
		"unit_type": "lecture",
		"duration_minutes": 12,
		"fields": {
			"title": "Axioms and definitions",
			"body": "An axiom is accepted without proof."
		}
	}`
	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), unit))
}

func TestContentUnitSchema_RejectsUnknownUnitType(t *testing.T) {
	schemaContent, err := os.ReadFile("content_unit.schema.json")
	require.NoError(t, err)

	unit := `{
		"category": "foundations",
		"unit_type": "quiz",
		"fields": {}
	}`
	assert.Error(t, schemas.ValidateJSONString(string(schemaContent), unit))
}

func TestItemsSchema_AcceptsBatch(t *testing.T) {
	schemaContent, err := os.ReadFile("items.schema.json")
	require.NoError(t, err)

	batch := `{
		"source": "notes.md",
		"items": [
			{"id": 1, "text": "A tensor is a multilinear map.", "word_count": 6}
		]
	}`
	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), batch))
}

func TestSlideDeckSchema_AcceptsExerciseSlides(t *testing.T) {
	schemaContent, err := os.ReadFile("slide_deck.schema.json")
	require.NoError(t, err)

	deck := `{
		"kind_note": null,
		"category": "techniques",
		"slides": [
			{"kind": "content", "title": "Integration by parts"},
			{"kind": "exercise", "variant": "fill_blank", "title": "Practice", "body": "Fill in the missing step."}
		]
	}`
	assert.Error(t, schemas.ValidateJSONString(string(schemaContent), deck), "unknown top-level keys are rejected")

	valid := `{
		"category": "techniques",
		"slides": [
			{"kind": "content", "title": "Integration by parts"},
			{"kind": "exercise", "variant": "fill_blank", "title": "Practice", "body": "Fill in the missing step."}
		]
	}`
	assert.NoError(t, schemas.ValidateJSONString(string(schemaContent), valid))
}
