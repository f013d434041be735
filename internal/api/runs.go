package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baton-ai/baton/internal/core"
)

type executeRequest struct {
	Prompt string `json:"prompt"`
}

// handleExecute starts a run of the workflow.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	run, err := s.deps.Runner.Execute(chi.URLParam(r, "workflowID"), req.Prompt)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, run)
}

// handleListRuns returns live runs, optionally filtered by workflow.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Runner.List(r.URL.Query().Get("workflow")))
}

// handleGetRun returns a run snapshot.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Runner.Get(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

type advanceRequest struct {
	Output   string `json:"output"`
	NextStep string `json:"next_step,omitempty"`
}

// handleAdvanceRun records a step output and moves the run forward.
func (s *Server) handleAdvanceRun(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	run, err := s.deps.Runner.Advance(chi.URLParam(r, "runID"), req.Output, req.NextStep)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

type completeRequest struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleCompleteRun force-sets a terminal status on the run.
func (s *Server) handleCompleteRun(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	run, err := s.deps.Runner.Complete(chi.URLParam(r, "runID"), core.RunStatus(req.Status), req.Error)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// handleRunHistory returns archived terminal runs, newest first. With
// the archive disabled the list is empty rather than an error.
func (s *Server) handleRunHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		respondJSON(w, http.StatusOK, []*core.Run{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	runs, err := s.deps.History.Recent(r.Context(), limit, r.URL.Query().Get("workflow"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if runs == nil {
		runs = []*core.Run{}
	}
	respondJSON(w, http.StatusOK, runs)
}
