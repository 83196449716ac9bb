package state

import (
	"fmt"
	"time"
)

// Run and section statuses. Transitions are monotonic forward except
// recovery, which is the only permitted rewind.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusRecovered  = "recovered"
)

// Pipeline step names in canonical execution order.
const (
	StepIngest   = "ingest"
	StepClassify = "classify"
	StepLoad     = "load_units"
	StepReview   = "review_sections"
	StepGate     = "gate"
	StepReport   = "report"
	StepArchive  = "archive"
)

// StepOrder is the canonical step sequence. Cross-field validation treats a
// section's last-recorded step as a position in this list.
var StepOrder = []string{
	StepIngest, StepClassify, StepLoad, StepReview, StepGate, StepReport, StepArchive,
}

// StepIndex returns a step's position in the canonical order, -1 if unknown.
func StepIndex(step string) int {
	for i, s := range StepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// SectionState tracks one category section's progress.
type SectionState struct {
	Status   string `json:"status"`
	LastStep string `json:"last_step,omitempty"`
}

// ErrorEntry is one appended error-log record.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Step    string    `json:"step,omitempty"`
	Section string    `json:"section,omitempty"`
	Message string    `json:"message"`
}

// CheckpointRef names a checkpoint recorded on the live state.
type CheckpointRef struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PipelineState is the single mutable record describing a run. It is
// persisted after every mutation and never silently reconstructed.
type PipelineState struct {
	RunID          string                  `json:"run_id"`
	Status         string                  `json:"status"`
	CurrentStep    string                  `json:"current_step,omitempty"`
	CurrentSection string                  `json:"current_section,omitempty"`
	Sections       map[string]SectionState `json:"sections"`
	Errors         []ErrorEntry            `json:"errors,omitempty"`
	Checkpoints    []CheckpointRef         `json:"checkpoints,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Update describes one merge into the live record. Nil scalar fields are
// left untouched; section entries merge by key; error entries append.
type Update struct {
	Status         *string
	CurrentStep    *string
	CurrentSection *string
	Sections       map[string]SectionState
	AppendErrors   []ErrorEntry
}

// newTemplate returns the empty pending record for a run. Read returns this
// when no file exists yet; it never fabricates partial data.
func newTemplate(runID string) *PipelineState {
	now := time.Now().UTC()
	return &PipelineState{
		RunID:     runID,
		Status:    StatusPending,
		Sections:  make(map[string]SectionState),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// clone returns a deep copy, used for checkpoint snapshots.
func (s *PipelineState) clone() *PipelineState {
	copied := *s
	copied.Sections = make(map[string]SectionState, len(s.Sections))
	for k, v := range s.Sections {
		copied.Sections[k] = v
	}
	copied.Errors = append([]ErrorEntry(nil), s.Errors...)
	copied.Checkpoints = append([]CheckpointRef(nil), s.Checkpoints...)
	return &copied
}

// merge applies an update: scalars overwrite when set, section maps merge by
// key, errors append, and UpdatedAt always refreshes.
func (s *PipelineState) merge(update Update) {
	if update.Status != nil {
		s.Status = *update.Status
	}
	if update.CurrentStep != nil {
		s.CurrentStep = *update.CurrentStep
	}
	if update.CurrentSection != nil {
		s.CurrentSection = *update.CurrentSection
	}
	if s.Sections == nil {
		s.Sections = make(map[string]SectionState)
	}
	for name, section := range update.Sections {
		s.Sections[name] = section
	}
	s.Errors = append(s.Errors, update.AppendErrors...)
	s.UpdatedAt = time.Now().UTC()
}

// validStatus reports whether a status string is a member of the lifecycle.
func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusRecovered:
		return true
	}
	return false
}

// consistencyProblems runs the cross-field checks on a parseable record.
// An empty result means the record is internally consistent.
func (s *PipelineState) consistencyProblems() []string {
	var problems []string

	if s.RunID == "" {
		problems = append(problems, "run_id is empty")
	}
	if !validStatus(s.Status) {
		problems = append(problems, fmt.Sprintf("unknown run status %q", s.Status))
	}
	if s.CurrentStep != "" && StepIndex(s.CurrentStep) < 0 {
		problems = append(problems, fmt.Sprintf("unknown current step %q", s.CurrentStep))
	}

	allCompleted := len(s.Sections) > 0
	for name, section := range s.Sections {
		if !validStatus(section.Status) {
			problems = append(problems, fmt.Sprintf("section %q has unknown status %q", name, section.Status))
			continue
		}
		if section.Status != StatusCompleted {
			allCompleted = false
		}

		stepIdx := StepIndex(section.LastStep)
		if section.LastStep != "" && stepIdx < 0 {
			problems = append(problems, fmt.Sprintf("section %q records unknown step %q", name, section.LastStep))
			continue
		}
		switch section.Status {
		case StatusCompleted:
			// A completed section must sit at the terminal step; anything
			// earlier means a status was written without the work behind it.
			if section.LastStep != StepOrder[len(StepOrder)-1] {
				problems = append(problems, fmt.Sprintf(
					"section %q is completed but its last step is %q, not %q",
					name, section.LastStep, StepOrder[len(StepOrder)-1]))
			}
		case StatusPending:
			if stepIdx > 0 {
				problems = append(problems, fmt.Sprintf(
					"section %q is pending but records step %q", name, section.LastStep))
			}
		}
	}

	if s.Status == StatusCompleted && !allCompleted {
		problems = append(problems, "run is completed but not all sections are")
	}

	return problems
}
