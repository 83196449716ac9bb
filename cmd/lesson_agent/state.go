package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lesson-factory/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and repair persisted run state",
}

var (
	stateDir   string
	stateRunID string
)

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted state record for a run",
	RunE:  runStateShow,
}

var stateValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a run's state file for corruption and inconsistencies",
	RunE:  runStateValidate,
}

var stateCheckpointCmd = &cobra.Command{
	Use:   "checkpoint <name>",
	Short: "Record a named checkpoint of the current run state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateCheckpoint,
}

var stateRecoverCmd = &cobra.Command{
	Use:   "recover <name>",
	Short: "Restore run state from a named checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateRecover,
}

func init() {
	stateCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "state", "Directory holding run state")
	stateCmd.PersistentFlags().StringVar(&stateRunID, "run-id", "", "Run identifier (required)")

	if err := stateCmd.MarkPersistentFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateValidateCmd)
	stateCmd.AddCommand(stateCheckpointCmd)
	stateCmd.AddCommand(stateRecoverCmd)
	rootCmd.AddCommand(stateCmd)
}

func openStateStore() (*state.Store, error) {
	store, err := state.NewStore(stateDir, stateRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}

func runStateShow(_ *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	record, err := store.Read()
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func runStateValidate(_ *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	verdict, problems, err := store.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate state: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Run %s: %s\n", stateRunID, verdict)
	for _, problem := range problems {
		fmt.Fprintf(os.Stdout, "  - %s\n", problem)
	}
	if verdict != state.VerdictValid {
		return fmt.Errorf("state for run %s is %s", stateRunID, verdict)
	}
	return nil
}

func runStateCheckpoint(_ *cobra.Command, args []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	name := args[0]
	if err := store.Checkpoint(name); err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Checkpoint %q recorded for run %s\n", name, stateRunID)
	return nil
}

func runStateRecover(_ *cobra.Command, args []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	name := args[0]
	record, err := store.Recover(name)
	if err != nil {
		return fmt.Errorf("failed to recover from checkpoint: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Run %s restored from checkpoint %q (status: %s, step: %s)\n",
		stateRunID, name, record.Status, record.CurrentStep)
	return nil
}
