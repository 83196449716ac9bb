package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_SingleUnitSuccess(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	unitPath := writeUnitFixture(t, tmpDir, "foundations")

	cmd := exec.Command(binaryPath, "validate", "--unit", unitPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "validate failed: %s", string(output))
	assert.Contains(t, string(output), "0 errors")
}

func TestValidateCommand_UnitsDirWritesViolations(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	writeUnitFixture(t, tmpDir, "foundations")
	writeUnitFixture(t, tmpDir, "techniques")
	out := filepath.Join(tmpDir, "violations.json")

	cmd := exec.Command(binaryPath, "validate", "--units", tmpDir, "--out", out)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "validate failed: %s", string(output))
	assert.FileExists(t, out)
	assert.Contains(t, string(output), "Validated 2 units")
}

func TestValidateCommand_FlagConflicts(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Neither --units nor --unit",
			args:        []string{"validate"},
			errorString: "either --units or --unit is required",
		},
		{
			name:        "Both --units and --unit",
			args:        []string{"validate", "--units", "dir", "--unit", "file.unit.json"},
			errorString: "mutually exclusive",
		},
		{
			name:        "Watch without units dir",
			args:        []string{"validate", "--unit", "file.unit.json", "--watch"},
			errorString: "--watch requires --units",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			assert.Error(t, err)
			assert.Contains(t, string(output), tt.errorString)
		})
	}
}
