// Package steps provides step definitions and dependency validation for the
// lesson pipeline.
package steps

import (
	"fmt"

	"github.com/jonathan/lesson-factory/internal/state"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Dependencies []string
	// PerSection marks steps that run once per category section rather than
	// once per run.
	PerSection bool
}

// StepRegistry holds all step definitions. The pipeline is a straight chain;
// the registry exists so resume, status queries, and the API can reason about
// what is runnable without re-deriving order from code.
var StepRegistry = map[string]StepDefinition{
	state.StepIngest: {
		Name:         state.StepIngest,
		Dependencies: []string{},
	},
	state.StepClassify: {
		Name:         state.StepClassify,
		Dependencies: []string{state.StepIngest},
	},
	state.StepLoad: {
		Name:         state.StepLoad,
		Dependencies: []string{state.StepClassify},
	},
	state.StepReview: {
		Name:         state.StepReview,
		Dependencies: []string{state.StepLoad},
		PerSection:   true,
	},
	state.StepGate: {
		Name:         state.StepGate,
		Dependencies: []string{state.StepReview},
		PerSection:   true,
	},
	state.StepReport: {
		Name:         state.StepReport,
		Dependencies: []string{state.StepGate},
	},
	state.StepArchive: {
		Name:         state.StepArchive,
		Dependencies: []string{state.StepReport},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// CompletedSteps derives the set of finished steps from a state record. A
// step counts as completed when it sits strictly before the current step in
// canonical order, or when the whole run is completed.
func CompletedSteps(s *state.PipelineState) map[string]bool {
	completed := make(map[string]bool)
	if s == nil {
		return completed
	}

	if s.Status == state.StatusCompleted {
		for _, step := range state.StepOrder {
			completed[step] = true
		}
		return completed
	}

	frontier := state.StepIndex(s.CurrentStep)
	for i, step := range state.StepOrder {
		if i < frontier {
			completed[step] = true
		}
	}
	return completed
}

// ValidateDependencies checks whether all required dependencies for a step
// are completed in the given state record.
func ValidateDependencies(s *state.PipelineState, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	completed := CompletedSteps(s)
	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// AvailableSteps returns steps whose dependencies are met and that have not
// run yet, in canonical order.
func AvailableSteps(s *state.PipelineState) []string {
	completed := CompletedSteps(s)

	var available []string
	for _, stepName := range state.StepOrder {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(s, stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	return available
}

// BlockedSteps returns steps that cannot run yet because a dependency is
// missing, in canonical order.
func BlockedSteps(s *state.PipelineState) []string {
	completed := CompletedSteps(s)

	var blocked []string
	for _, stepName := range state.StepOrder {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(s, stepName); err != nil {
			blocked = append(blocked, stepName)
		}
	}
	return blocked
}
