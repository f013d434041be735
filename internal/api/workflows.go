package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/graph"
)

// handleListWorkflows returns all workflows in canonical form.
func (s *Server) handleListWorkflows(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Store.List())
}

// handleCreateWorkflow creates a workflow from either a visual payload
// (nodes/edges) or a wizard payload (name/description/trigger only).
func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var payload VisualWorkflow
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(payload.Nodes) == 0 && len(payload.Edges) == 0 {
		wf, err := s.deps.Store.Create(payload.Name, payload.Description, core.Trigger(payload.Trigger))
		if err != nil {
			s.respondDomainError(w, err)
			return
		}
		if payload.TriggerPattern != "" {
			wf.TriggerPattern = payload.TriggerPattern
			if err := s.deps.Store.Save(wf); err != nil {
				s.respondDomainError(w, err)
				return
			}
		}
		respondJSON(w, http.StatusCreated, wf)
		return
	}

	wf, err := payload.ToWorkflow()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if _, err := s.deps.Store.Get(wf.ID); err == nil {
		s.respondDomainError(w, core.ErrConflict(core.CodeWorkflowExists,
			"workflow "+wf.ID+" already exists"))
		return
	}
	if err := s.deps.Store.Save(wf); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wf)
}

// handleGetWorkflow returns one workflow in canonical form.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.deps.Store.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// handleUpdateWorkflow replaces a workflow from a visual payload. The id
// in the URL wins over any id in the body; created_at is preserved.
func (s *Server) handleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	existing, err := s.deps.Store.Get(id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var payload VisualWorkflow
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	wf, err := payload.ToWorkflow()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	wf.ID = id
	wf.CreatedAt = existing.CreatedAt
	if err := s.deps.Store.Save(wf); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

// handleDeleteWorkflow removes a workflow definition and its file.
func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Delete(chi.URLParam(r, "workflowID")); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleGetVisual returns the workflow in node/edge form.
func (s *Server) handleGetVisual(w http.ResponseWriter, r *http.Request) {
	wf, err := s.deps.Store.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, VisualFromWorkflow(wf))
}

// handleGetAnalysis returns the complexity report.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	wf, err := s.deps.Store.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, graph.Analyze(wf))
}

// handleGetInstructions returns the compiled instructions markdown.
func (s *Server) handleGetInstructions(w http.ResponseWriter, r *http.Request) {
	wf, err := s.deps.Store.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	text, err := s.deps.Compiler.Instructions(wf)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"workflow_id":  wf.ID,
		"instructions": text,
	})
}

// handleGetDiagram returns the ASCII diagram as plain text.
func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	wf, err := s.deps.Store.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.Diagram(wf)))
}

// handleAddStep appends a step to a workflow (wizard editing).
func (s *Server) handleAddStep(w http.ResponseWriter, r *http.Request) {
	var step core.WorkflowStep
	if err := decodeJSON(r, &step); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	wf, err := s.deps.Store.AddStep(chi.URLParam(r, "workflowID"), &step)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wf)
}

type connectRequest struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Condition *core.Condition `json:"condition,omitempty"`
}

// handleConnectSteps adds an edge between two steps (wizard editing).
func (s *Server) handleConnectSteps(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	wf, err := s.deps.Store.ConnectSteps(chi.URLParam(r, "workflowID"), req.From, req.To, req.Condition)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

type nextStepsRequest struct {
	Context map[string]interface{} `json:"context"`
}

// handleNextSteps evaluates the outgoing edges of a step against a
// context map and returns the qualifying successor ids.
func (s *Server) handleNextSteps(w http.ResponseWriter, r *http.Request) {
	var req nextStepsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	steps, err := s.deps.Runner.NextSteps(
		chi.URLParam(r, "workflowID"), chi.URLParam(r, "stepID"), req.Context)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"next_steps": steps})
}
