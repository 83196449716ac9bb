package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertRunSection records or updates one section's progress for a run
func (db *DB) UpsertRunSection(ctx context.Context, runID uuid.UUID, input *RunSectionInput) (*RunSection, error) {
	var section RunSection
	err := db.pool.QueryRow(ctx,
		`INSERT INTO run_sections (run_id, name, status, last_step)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, name) DO UPDATE SET status = $3, last_step = $4, updated_at = NOW()
		 RETURNING id, run_id, name, status, COALESCE(last_step, ''), created_at, updated_at`,
		runID, input.Name, input.Status, input.LastStep,
	).Scan(&section.ID, &section.RunID, &section.Name, &section.Status,
		&section.LastStep, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert run section: %w", err)
	}
	return &section, nil
}

// GetRunSection retrieves one section's record by run and name
func (db *DB) GetRunSection(ctx context.Context, runID uuid.UUID, name string) (*RunSection, error) {
	var section RunSection
	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, name, status, COALESCE(last_step, ''), created_at, updated_at
		 FROM run_sections WHERE run_id = $1 AND name = $2`,
		runID, name,
	).Scan(&section.ID, &section.RunID, &section.Name, &section.Status,
		&section.LastStep, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run section: %w", err)
	}
	return &section, nil
}

// ListRunSections retrieves all sections for a run, optionally filtered by status
func (db *DB) ListRunSections(ctx context.Context, runID uuid.UUID, status *string) ([]RunSection, error) {
	query := `SELECT id, run_id, name, status, COALESCE(last_step, ''), created_at, updated_at
	          FROM run_sections WHERE run_id = $1`
	args := []any{runID}

	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}

	query += " ORDER BY name"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run sections: %w", err)
	}
	defer rows.Close()

	var sections []RunSection
	for rows.Next() {
		var section RunSection
		if err := rows.Scan(&section.ID, &section.RunID, &section.Name, &section.Status,
			&section.LastStep, &section.CreatedAt, &section.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, nil
}
