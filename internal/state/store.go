package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/lesson-factory/internal/logging"
	"github.com/jonathan/lesson-factory/internal/schemas"
)

const (
	stateFileName = "state.json"
	checkpointDir = "checkpoints"

	// writeRetryDelay is the backoff before the single write retry.
	writeRetryDelay = 50 * time.Millisecond
)

// Store is the file-backed persistence port for one run's pipeline state.
// All mutation funnels through the store's mutex: it is the single writer
// for the run, so concurrent workers can never silently drop an update.
type Store struct {
	mu         sync.Mutex
	dir        string
	runID      string
	schemaPath string
}

// NewStore opens (or prepares) the state directory for a run. The schema
// used by Validate is resolved relative to the working directory; a missing
// schema degrades Validate to parse-and-consistency checks only.
func NewStore(stateDir, runID string) (*Store, error) {
	if runID == "" {
		return nil, &Error{Message: "run id is empty"}
	}
	if !safePathComponent(runID) {
		return nil, &Error{Message: fmt.Sprintf("run id %q contains path separators", runID)}
	}
	dir := filepath.Join(stateDir, runID)
	if err := os.MkdirAll(filepath.Join(dir, checkpointDir), 0755); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to create state directory %s", dir), Cause: err}
	}
	return &Store{
		dir:        dir,
		runID:      runID,
		schemaPath: schemas.ResolveSchemaPath("schemas/pipeline_state.schema.json"),
	}, nil
}

// Dir returns the run's state directory.
func (st *Store) Dir() string {
	return st.dir
}

// Read returns the current state, or the empty pending template when no
// state file exists yet. A present-but-unreadable file is surfaced as
// corruption, never guessed around.
func (st *Store) Read() (*PipelineState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.readLocked()
}

func (st *Store) readLocked() (*PipelineState, error) {
	path := filepath.Join(st.dir, stateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newTemplate(st.runID), nil
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read state file %s", path), Cause: err}
	}

	var s PipelineState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("state file %s is not parseable", path),
			Verdict: VerdictCorrupted,
			Cause:   err,
		}
	}
	return &s, nil
}

// Write merges an update into the live record and persists it atomically.
// A write fault gets one retry with a short backoff, then surfaces.
func (st *Store) Write(update Update) (*PipelineState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, err := st.readLocked()
	if err != nil {
		return nil, err
	}
	current.merge(update)

	if err := st.persistLocked(current); err != nil {
		return nil, err
	}
	return current, nil
}

// AppendError records one error-log entry and persists.
func (st *Store) AppendError(step, section, message string) error {
	_, err := st.Write(Update{AppendErrors: []ErrorEntry{{
		Time:    time.Now().UTC(),
		Step:    step,
		Section: section,
		Message: message,
	}}})
	return err
}

// Validate classifies the backing record: corrupted (unparseable or
// schema-invalid), invalid (parseable but inconsistent), or valid. The
// problems list explains any non-valid verdict.
func (st *Store) Validate() (verdict string, problems []string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	path := filepath.Join(st.dir, stateFileName)
	data, readErr := os.ReadFile(path)
	if os.IsNotExist(readErr) {
		// No file yet is a valid empty store.
		return VerdictValid, nil, nil
	}
	if readErr != nil {
		return "", nil, &Error{Message: fmt.Sprintf("failed to read state file %s", path), Cause: readErr}
	}

	var s PipelineState
	if err := json.Unmarshal(data, &s); err != nil {
		return VerdictCorrupted, []string{fmt.Sprintf("not parseable: %v", err)}, nil
	}

	if st.schemaPath != "" {
		schemaBytes, err := os.ReadFile(st.schemaPath)
		if err == nil {
			if err := schemas.ValidateJSONString(string(schemaBytes), string(data)); err != nil {
				return VerdictCorrupted, []string{fmt.Sprintf("schema check failed: %v", err)}, nil
			}
		}
	}

	if problems := s.consistencyProblems(); len(problems) > 0 {
		return VerdictInvalid, problems, nil
	}
	return VerdictValid, nil, nil
}

// Checkpoint snapshots the live record under a name. The snapshot file is
// independent of the live record and is never rewritten: a second checkpoint
// with the same name is an error, not an overwrite.
func (st *Store) Checkpoint(name string) error {
	if name == "" {
		return &Error{Message: "checkpoint name is empty"}
	}
	if !safePathComponent(name) {
		return &Error{Message: fmt.Sprintf("checkpoint name %q contains path separators", name)}
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	current, err := st.readLocked()
	if err != nil {
		return err
	}

	path := st.checkpointPath(name)
	if _, err := os.Stat(path); err == nil {
		return &Error{Message: fmt.Sprintf("checkpoint %q already exists", name)}
	}

	snapshot := current.clone()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return &Error{Message: "failed to marshal checkpoint", Cause: err}
	}
	if err := atomicWrite(path, data); err != nil {
		return &Error{Message: fmt.Sprintf("failed to write checkpoint %q", name), Cause: err}
	}

	current.Checkpoints = append(current.Checkpoints, CheckpointRef{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	current.UpdatedAt = time.Now().UTC()
	if err := st.persistLocked(current); err != nil {
		return err
	}

	logging.Infow("checkpoint created", "run", st.runID, "name", name)
	return nil
}

// ReadCheckpoint loads a named checkpoint snapshot without touching the
// live record.
func (st *Store) ReadCheckpoint(name string) (*PipelineState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.readCheckpointLocked(name)
}

func (st *Store) readCheckpointLocked(name string) (*PipelineState, error) {
	if !safePathComponent(name) {
		return nil, &Error{Message: fmt.Sprintf("checkpoint name %q contains path separators", name)}
	}
	path := st.checkpointPath(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &Error{Message: fmt.Sprintf("checkpoint %q not found", name)}
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read checkpoint %q", name), Cause: err}
	}

	var s PipelineState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("checkpoint %q is not parseable", name),
			Verdict: VerdictCorrupted,
			Cause:   err,
		}
	}
	return &s, nil
}

// Recover replaces the live record with a named checkpoint. This is the one
// permitted rewind: the restored record keeps the full checkpoint list
// recorded since the snapshot (so a recovery can itself be recovered from)
// and is marked recovered.
func (st *Store) Recover(name string) (*PipelineState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	snapshot, err := st.readCheckpointLocked(name)
	if err != nil {
		return nil, err
	}
	if problems := snapshot.consistencyProblems(); len(problems) > 0 {
		return nil, &Error{
			Message: fmt.Sprintf("checkpoint %q is inconsistent: %v", name, problems),
			Verdict: VerdictInvalid,
		}
	}

	current, err := st.readLocked()
	if err != nil {
		// A corrupted live record is exactly what recovery exists for.
		var serr *Error
		if !(errors.As(err, &serr) && serr.Verdict == VerdictCorrupted) {
			return nil, err
		}
		current = nil
	}

	restored := snapshot.clone()
	restored.Status = StatusRecovered
	if current != nil {
		restored.Checkpoints = append([]CheckpointRef(nil), current.Checkpoints...)
	}
	restored.UpdatedAt = time.Now().UTC()

	if err := st.persistLocked(restored); err != nil {
		return nil, err
	}

	logging.Infow("recovered from checkpoint", "run", st.runID, "name", name)
	return restored, nil
}

// persistLocked writes the record atomically, retrying once on a fault.
func (st *Store) persistLocked(s *PipelineState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &Error{Message: "failed to marshal state", Cause: err}
	}

	path := filepath.Join(st.dir, stateFileName)
	if err := atomicWrite(path, data); err != nil {
		logging.Warnw("state write fault, retrying once", "run", st.runID, "error", err)
		time.Sleep(writeRetryDelay)
		if err := atomicWrite(path, data); err != nil {
			return &Error{Message: fmt.Sprintf("failed to persist state to %s", path), Cause: err}
		}
	}
	return nil
}

// atomicWrite writes data via a temp file and rename so a crash mid-write
// never leaves a half-written store observable by the next reader.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (st *Store) checkpointPath(name string) string {
	return filepath.Join(st.dir, checkpointDir, name+".json")
}

// safePathComponent reports whether a name can be joined into the state
// layout as a single path element. Names with separators or traversal
// sequences would land files outside <state-dir>/<run-id>/checkpoints/.
func safePathComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
