package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baton-ai/baton/internal/compile"
	"github.com/baton-ai/baton/internal/core"
)

// handleGetExports reports which artifacts exist on disk for a workflow.
func (s *Server) handleGetExports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	if _, err := s.deps.Store.Get(id); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Exports.Status(id))
}

type exportRequest struct {
	Kind string `json:"kind"`
}

type exportResponse struct {
	WorkflowID string   `json:"workflow_id"`
	Kind       string   `json:"kind"`
	Paths      []string `json:"paths"`
}

// handleExport writes artifacts for a workflow. Kind may be a concrete
// artifact kind, "all", or "auto" (empty defaults to auto, which follows
// the analyzer's recommendation).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id := chi.URLParam(r, "workflowID")

	var (
		paths []string
		err   error
	)
	switch req.Kind {
	case "", "auto":
		req.Kind = "auto"
		paths, err = s.deps.Exports.ExportAuto(id)
	case "all":
		paths, err = s.deps.Exports.ExportAll(id)
	default:
		kind := compile.Kind(req.Kind)
		if !kind.IsValid() {
			s.respondDomainError(w, core.ErrValidation(core.CodeInvalidExport,
				"unknown export kind "+req.Kind))
			return
		}
		var path string
		path, err = s.deps.Exports.Export(id, kind)
		paths = []string{path}
	}
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, exportResponse{
		WorkflowID: id,
		Kind:       req.Kind,
		Paths:      paths,
	})
}

// handleDeleteExports removes all artifacts for a workflow.
func (s *Server) handleDeleteExports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	if _, err := s.deps.Store.Get(id); err != nil {
		s.respondDomainError(w, err)
		return
	}
	if err := s.deps.Exports.DeleteExports(id); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
