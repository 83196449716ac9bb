package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/lesson-factory/internal/db"
)

// resolveRun looks a run up by database ID or by its pipeline run key.
// Returns nil without writing a response when the run does not exist.
func (s *Server) resolveRun(w http.ResponseWriter, r *http.Request) *db.Run {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return nil
	}

	var run *db.Run
	var err error
	if runID, parseErr := uuid.Parse(idStr); parseErr == nil {
		run, err = s.db.GetRun(r.Context(), runID)
	} else {
		run, err = s.db.GetRunByKey(r.Context(), idStr)
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return nil
	}
	return run
}

// handleListRuns returns runs, optionally filtered by source and status
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := db.RunFilters{
		Source: r.URL.Query().Get("source"),
		Status: r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		filters.Limit = limit
	}

	runs, err := s.db.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns a single run's status
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	s.jsonResponse(w, http.StatusOK, StatusResponse{
		RunID:     run.ID.String(),
		RunKey:    run.RunKey,
		Source:    run.Source,
		Status:    run.Status,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleDeleteRun deletes a run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	if err := s.db.DeleteRun(r.Context(), run.ID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Run deleted",
		"run_id":  run.ID.String(),
	})
}

// handleRunArtifacts lists the artifacts saved for a run
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), db.ArtifactFilters{RunID: run.ID})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":    run.ID.String(),
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}

// handleRunItems returns the ingested item batch for a run
func (s *Server) handleRunItems(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	items, err := s.db.GetItemBatchByRunID(r.Context(), run.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if items == nil {
		s.errorResponse(w, http.StatusNotFound, "Items not found for run")
		return
	}

	s.jsonResponse(w, http.StatusOK, items)
}

// handleRunAssignments returns the classification assignments for a run
func (s *Server) handleRunAssignments(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	assignments, err := s.db.GetAssignmentSetByRunID(r.Context(), run.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if assignments == nil {
		s.errorResponse(w, http.StatusNotFound, "Assignments not found for run")
		return
	}

	s.jsonResponse(w, http.StatusOK, assignments)
}

// handleRunReport returns the remediation report for a run
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	report, err := s.db.GetReportByRunID(r.Context(), run.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if report == nil {
		s.errorResponse(w, http.StatusNotFound, "Report not found for run")
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleRunSections lists per-section progress for a run
func (s *Server) handleRunSections(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	var status *string
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = &statusStr
	}

	sections, err := s.db.ListRunSections(r.Context(), run.ID, status)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":   run.ID.String(),
		"sections": sections,
		"count":    len(sections),
	})
}

// handleRunSectionGate returns one section's quality-gate result
func (s *Server) handleRunSectionGate(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	name := r.PathValue("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Section name is required")
		return
	}

	gate, err := s.db.GetGateResultByRunSection(r.Context(), run.ID, name)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if gate == nil {
		s.errorResponse(w, http.StatusNotFound, "Gate result not found for section")
		return
	}

	s.jsonResponse(w, http.StatusOK, gate)
}

// handleRunCheckpoints lists the checkpoints recorded for a run
func (s *Server) handleRunCheckpoints(w http.ResponseWriter, r *http.Request) {
	run := s.resolveRun(w, r)
	if run == nil {
		return
	}

	checkpoints, err := s.db.ListRunCheckpoints(r.Context(), run.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":      run.ID.String(),
		"checkpoints": checkpoints,
		"count":       len(checkpoints),
	})
}

// handleListArtifacts lists artifacts across runs with optional filters
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	filters := db.ArtifactFilters{
		Step:    r.URL.Query().Get("step"),
		Section: r.URL.Query().Get("section"),
	}
	if runIDStr := r.URL.Query().Get("run_id"); runIDStr != "" {
		runID, err := uuid.Parse(runIDStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid run_id parameter")
			return
		}
		filters.RunID = runID
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}
