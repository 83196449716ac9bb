package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateCommand_UnitPasses(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	unitPath := writeUnitFixture(t, tmpDir, "foundations")

	cmd := exec.Command(binaryPath, "gate", "--unit", unitPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "gate failed: %s", string(output))
	assert.Contains(t, string(output), "PASS")
}

func TestGateCommand_DeckPasses(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	deckPath := writeDeckFixture(t, tmpDir, "foundations")

	cmd := exec.Command(binaryPath, "gate", "--deck", deckPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "gate failed: %s", string(output))
	assert.Contains(t, string(output), "PASS")
}

func TestGateCommand_FlagConflicts(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Neither --unit nor --deck",
			args:        []string{"gate"},
			errorString: "either --unit or --deck is required",
		},
		{
			name:        "Both --unit and --deck",
			args:        []string{"gate", "--unit", "a.unit.json", "--deck", "b.deck.json"},
			errorString: "mutually exclusive",
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
