package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveRunCheckpoint mirrors one named state snapshot into the archive.
// Checkpoint names are unique per run; a duplicate insert is an error to
// match the file store's immutability rule.
func (db *DB) SaveRunCheckpoint(ctx context.Context, runID uuid.UUID, name string, snapshot map[string]interface{}) (*RunCheckpoint, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkpoint snapshot: %w", err)
	}

	var cp RunCheckpoint
	err = db.pool.QueryRow(ctx,
		`INSERT INTO run_checkpoints (run_id, name, snapshot)
		 VALUES ($1, $2, $3)
		 RETURNING id, run_id, name, snapshot, created_at`,
		runID, name, snapshotJSON,
	).Scan(&cp.ID, &cp.RunID, &cp.Name, &snapshotJSON, &cp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save checkpoint %q: %w", name, err)
	}

	if snapshotJSON != nil {
		_ = json.Unmarshal(snapshotJSON, &cp.Snapshot)
	}
	return &cp, nil
}

// GetRunCheckpoint retrieves a named checkpoint for a run
func (db *DB) GetRunCheckpoint(ctx context.Context, runID uuid.UUID, name string) (*RunCheckpoint, error) {
	var cp RunCheckpoint
	var snapshotJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, name, snapshot, created_at
		 FROM run_checkpoints WHERE run_id = $1 AND name = $2`,
		runID, name,
	).Scan(&cp.ID, &cp.RunID, &cp.Name, &snapshotJSON, &cp.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkpoint %q: %w", name, err)
	}

	if snapshotJSON != nil {
		_ = json.Unmarshal(snapshotJSON, &cp.Snapshot)
	}
	return &cp, nil
}

// ListRunCheckpoints retrieves all checkpoints for a run in creation order
func (db *DB) ListRunCheckpoints(ctx context.Context, runID uuid.UUID) ([]RunCheckpoint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, name, snapshot, created_at
		 FROM run_checkpoints WHERE run_id = $1 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []RunCheckpoint
	for rows.Next() {
		var cp RunCheckpoint
		var snapshotJSON []byte
		if err := rows.Scan(&cp.ID, &cp.RunID, &cp.Name, &snapshotJSON, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		if snapshotJSON != nil {
			_ = json.Unmarshal(snapshotJSON, &cp.Snapshot)
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, nil
}
