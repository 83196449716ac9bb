package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSourceFixture(t *testing.T, dir string) string {
	t.Helper()
	source := filepath.Join(dir, "lesson.md")
	content := `# Derivatives

- The definition of a derivative is the limit of the difference quotient.
- How to apply the chain rule: compute the outer derivative step by step.
- Derivatives are used in industry to model rates of change in practice.
- Calculus was discovered in the 17th century by Newton and Leibniz.
`
	require.NoError(t, os.WriteFile(source, []byte(content), 0644))
	return source
}

func writeUnitFixture(t *testing.T, dir, category string) string {
	t.Helper()
	path := filepath.Join(dir, category+".unit.json")
	content := `{
  "category": "` + category + `",
  "unit_type": "recap",
  "duration_minutes": 5,
  "fields": {
    "title": "Session recap overview",
    "body": "This recap revisits the core ideas of the session and ties each concept back to the worked material so learners leave with a compact summary."
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeDeckFixture(t *testing.T, dir, category string) string {
	t.Helper()
	path := filepath.Join(dir, category+".deck.json")
	content := `{
  "category": "` + category + `",
  "slides": [
    {"kind": "content", "title": "Opening"},
    {"kind": "content", "title": "Key idea"},
    {"kind": "exercise", "variant": "multiple_choice", "title": "Quick check"},
    {"kind": "content", "title": "Worked case"},
    {"kind": "content", "title": "Summary"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
