package api

import (
	"net/http"
	"strconv"

	"github.com/baton-ai/baton/internal/intent"
)

// handleListAgents returns the agent catalog.
func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Registry.List())
}

// handleAgentSuggestions suggests follow-up agents for a task context.
// Query: ?context=<task text>&current=<agent to exclude>.
func (s *Server) handleAgentSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	suggestions := s.deps.Registry.Suggest(q.Get("current"), q.Get("context"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

type parseRequest struct {
	Text string `json:"text"`
}

// handleParseCommand runs the verbal command parser. Unrecognized text
// yields a JSON null, not an error.
func (s *Server) handleParseCommand(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	respondJSON(w, http.StatusOK, intent.Parse(req.Text))
}

type handoffRequest struct {
	FromAgent string                 `json:"from_agent"`
	ToAgent   string                 `json:"to_agent"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
}

// handleRecordHandoff records an agent-to-agent handoff.
func (s *Server) handleRecordHandoff(w http.ResponseWriter, r *http.Request) {
	var req handoffRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FromAgent == "" || req.ToAgent == "" {
		respondError(w, http.StatusBadRequest, "from_agent and to_agent are required")
		return
	}
	h := s.deps.Handoffs.Record(req.FromAgent, req.ToAgent, req.Context, req.Reason)
	respondJSON(w, http.StatusCreated, h)
}

// handleListHandoffs returns the most recent handoffs, oldest first.
func (s *Server) handleListHandoffs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	respondJSON(w, http.StatusOK, s.deps.Handoffs.Recent(limit))
}
