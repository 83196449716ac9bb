package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/lesson-factory/internal/logging"
	"github.com/jonathan/lesson-factory/internal/pipeline"
)

// RunRequest represents the request body for /run
type RunRequest struct {
	Source   string `json:"source"`
	UnitsDir string `json:"units_dir"`
	Ruleset  string `json:"ruleset,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Workers  int    `json:"workers,omitempty"`
	Resume   bool   `json:"resume,omitempty"`
}

// RunResponse represents the response for /run
type RunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// StatusResponse represents the response for a run lookup
type StatusResponse struct {
	RunID     string `json:"run_id"`
	RunKey    string `json:"run_key"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// buildRunOptions converts an API request into pipeline options.
func (s *Server) buildRunOptions(req *RunRequest) pipeline.RunOptions {
	return pipeline.RunOptions{
		SourcePath:  req.Source,
		UnitsDir:    req.UnitsDir,
		RulesetPath: req.Ruleset,
		StateDir:    s.stateDir,
		RunID:       req.RunID,
		Workers:     req.Workers,
		Resume:      req.Resume,
		DatabaseURL: s.databaseURL,
		Verbose:     true,
	}
}

// validateRunRequest checks the request fields shared by /run and /run/stream.
func (s *Server) validateRunRequest(w http.ResponseWriter, req *RunRequest) bool {
	if req.Source == "" && !req.Resume {
		s.errorResponse(w, http.StatusBadRequest, "source is required")
		return false
	}
	if req.UnitsDir == "" {
		s.errorResponse(w, http.StatusBadRequest, "units_dir is required")
		return false
	}
	if req.Resume && req.RunID == "" {
		s.errorResponse(w, http.StatusBadRequest, "resume requires run_id")
		return false
	}
	return true
}

// handleRun starts a new pipeline run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !s.validateRunRequest(w, &req) {
		return
	}

	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	opts := s.buildRunOptions(&req)

	logging.Infow("starting pipeline run", "run", req.RunID)

	// Run pipeline in background
	go func() {
		ctx := context.Background()
		if _, err := pipeline.RunPipeline(ctx, opts); err != nil {
			logging.Errorw("pipeline run failed", "run", req.RunID, "error", err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, RunResponse{
		RunID:  req.RunID,
		Status: "started",
	})
}

// handleRunStream starts a pipeline and streams progress via SSE
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !s.validateRunRequest(w, &req) {
		return
	}

	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}

	// Setup SSE writer
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Infow("starting streaming pipeline run", "run", req.RunID)

	opts := s.buildRunOptions(&req)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			logging.Errorw("failed to write SSE event", "error", err)
		}
	}

	// Run pipeline synchronously (blocking until complete)
	result, err := pipeline.RunPipeline(r.Context(), opts)
	if err != nil {
		logging.Errorw("pipeline run failed", "run", req.RunID, "error", err)
		sse.WriteError(err.Error())
		return
	}

	status := "completed"
	if !result.Passed {
		status = "remediation_required"
	}
	sse.WriteComplete(result.RunID, status)
	logging.Infow("streaming pipeline run completed", "run", result.RunID)
}
