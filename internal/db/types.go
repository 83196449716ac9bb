package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a lesson run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	RunKey      string     `json:"run_key"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepItems       = "items"
	StepAssignments = "assignments"
	StepViolations  = "violations"
	StepQuota       = "quota"
	StepGateResults = "gate_results"
	StepReport      = "report"
)

// SectionStatus constants mirroring the file-backed state record
const (
	SectionStatusPending    = "pending"
	SectionStatusInProgress = "in_progress"
	SectionStatusCompleted  = "completed"
	SectionStatusFailed     = "failed"
)

// RunSection mirrors one per-section progress entry for a run
type RunSection struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	LastStep  string    `json:"last_step,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunSectionInput represents input for upserting a run section
type RunSectionInput struct {
	Name     string
	Status   string
	LastStep string
}

// RunCheckpoint mirrors one named state snapshot for a run
type RunCheckpoint struct {
	ID        uuid.UUID              `json:"id"`
	RunID     uuid.UUID              `json:"run_id"`
	Name      string                 `json:"name"`
	Snapshot  map[string]interface{} `json:"snapshot"`
	CreatedAt time.Time              `json:"created_at"`
}
