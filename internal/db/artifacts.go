package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/lesson-factory/internal/types"
)

// SaveArtifact stores a JSON artifact for a run. One artifact per
// (run, step, section); a re-run overwrites the previous row.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step, section string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, section, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step, section) DO UPDATE SET content = $4, created_at = NOW()`,
		runID, step, section, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run, step, and section
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step, section string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2 AND section = $3`,
		runID, step, section,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Step      string    `json:"step"`
	Section   string    `json:"section"`
	CreatedAt string    `json:"created_at"`
}

// ArtifactFilters holds optional filters for listing artifacts
type ArtifactFilters struct {
	RunID   uuid.UUID
	Step    string
	Section string
}

// ListArtifacts retrieves artifacts with optional filters
func (db *DB) ListArtifacts(ctx context.Context, filters ArtifactFilters) ([]ArtifactSummary, error) {
	query := `SELECT id, step, COALESCE(section, ''), created_at
		FROM artifacts WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.RunID != uuid.Nil {
		query += fmt.Sprintf(" AND run_id = $%d", argNum)
		args = append(args, filters.RunID)
		argNum++
	}
	if filters.Step != "" {
		query += fmt.Sprintf(" AND step = $%d", argNum)
		args = append(args, filters.Step)
		argNum++
	}
	if filters.Section != "" {
		query += fmt.Sprintf(" AND section = $%d", argNum)
		args = append(args, filters.Section)
	}

	query += " ORDER BY created_at ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		var createdAt any
		if err := rows.Scan(&a.ID, &a.Step, &a.Section, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		if t, ok := createdAt.(interface{ String() string }); ok {
			a.CreatedAt = t.String()
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// GetAssignmentSetByRunID loads the classification result for a run
func (db *DB) GetAssignmentSetByRunID(ctx context.Context, runID uuid.UUID) (*types.AssignmentSet, error) {
	content, err := db.GetArtifact(ctx, runID, StepAssignments, "")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var set types.AssignmentSet
	if err := json.Unmarshal(content, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment set: %w", err)
	}
	return &set, nil
}

// GetReportByRunID loads the final report for a run
func (db *DB) GetReportByRunID(ctx context.Context, runID uuid.UUID) (*types.Report, error) {
	content, err := db.GetArtifact(ctx, runID, StepReport, "")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var report types.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// GetGateResultByRunSection loads one section's gate result for a run
func (db *DB) GetGateResultByRunSection(ctx context.Context, runID uuid.UUID, section string) (*types.GateResult, error) {
	content, err := db.GetArtifact(ctx, runID, StepGateResults, section)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var result types.GateResult
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gate result: %w", err)
	}
	return &result, nil
}

// GetItemBatchByRunID loads the ingested item batch for a run
func (db *DB) GetItemBatchByRunID(ctx context.Context, runID uuid.UUID) (*types.ItemBatch, error) {
	content, err := db.GetArtifact(ctx, runID, StepItems, "")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var batch types.ItemBatch
	if err := json.Unmarshal(content, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item batch: %w", err)
	}
	return &batch, nil
}
