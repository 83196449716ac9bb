package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCommand_MarkdownSuccess(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	source := writeSourceFixture(t, tmpDir)
	out := filepath.Join(tmpDir, "items.json")

	cmd := exec.Command(binaryPath, "ingest", "--source", source, "--out", out)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "ingest failed: %s", string(output))
	assert.FileExists(t, out)
	assert.Contains(t, string(output), "items")
}

func TestIngestCommand_MissingFlags(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "Missing --out",
			args: []string{"ingest", "--source", "lesson.md"},
		},
		{
			name: "Missing --source",
			args: []string{"ingest", "--out", "items.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			assert.Error(t, err)
			assert.Contains(t, string(output), "required")
		})
	}
}

func TestIngestCommand_SourceNotFound(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	out := filepath.Join(tmpDir, "items.json")

	cmd := exec.Command(binaryPath, "ingest", "--source", filepath.Join(tmpDir, "missing.md"), "--out", out)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output should be written on failure: %s", string(output))
}
