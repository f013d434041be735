package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/baton-ai/baton/internal/agents"
)

func TestListAgents(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/agents", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var catalog []agents.Agent
	decodeBody(t, w, &catalog)
	if len(catalog) == 0 {
		t.Fatal("expected a non-empty agent catalog")
	}

	names := map[string]bool{}
	for _, a := range catalog {
		names[a.Name] = true
	}
	if !names["master-developer"] || !names["test-engineer"] {
		t.Errorf("expected default agents in catalog, got %v", names)
	}
}

func TestAgentSuggestions(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet,
		"/api/v1/agents/suggestions?context=write+unit+tests&current=master-developer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected suggestions for a test task")
	}
	if resp.Suggestions[0] != "test-engineer" {
		t.Errorf("expected test-engineer first, got %v", resp.Suggestions)
	}
	for _, name := range resp.Suggestions {
		if name == "master-developer" {
			t.Error("current agent should be excluded from suggestions")
		}
	}
}

func TestParseCommand(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/commands/parse",
		map[string]string{"text": "hand off to reviewer"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["type"] != "handoff" {
		t.Errorf("expected type 'handoff', got %q", resp["type"])
	}
	if resp["action"] != "handoff" {
		t.Errorf("expected action 'handoff', got %q", resp["action"])
	}
	if resp["target"] != "reviewer" {
		t.Errorf("expected target 'reviewer', got %q", resp["target"])
	}
}

func TestParseCommand_NoIntent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/commands/parse",
		map[string]string{"text": "what a lovely afternoon"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "null" {
		t.Errorf("expected JSON null for unparseable text, got %q", body)
	}
}

func TestHandoffs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/handoffs", map[string]interface{}{
		"from_agent": "project-planner",
		"to_agent":   "master-developer",
		"reason":     "plan approved",
		"context":    map[string]interface{}{"plan": "three phases"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body %s)", w.Code, w.Body.String())
	}

	var recorded map[string]interface{}
	decodeBody(t, w, &recorded)
	if recorded["id"] == "" || recorded["id"] == nil {
		t.Error("expected handoff id to be assigned")
	}
	if recorded["from_agent"] != "project-planner" {
		t.Errorf("expected from_agent 'project-planner', got %v", recorded["from_agent"])
	}

	w = env.do(t, http.MethodPost, "/api/v1/handoffs", map[string]string{
		"from_agent": "master-developer",
		"to_agent":   "test-engineer",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("second record failed with %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/handoffs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var listed []map[string]interface{}
	decodeBody(t, w, &listed)
	if len(listed) != 2 {
		t.Fatalf("expected 2 handoffs, got %d", len(listed))
	}
	if listed[0]["from_agent"] != "project-planner" {
		t.Errorf("expected oldest handoff first, got %v", listed[0]["from_agent"])
	}
}

func TestRecordHandoff_MissingAgents(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/handoffs",
		map[string]string{"to_agent": "test-engineer"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListHandoffs_BadLimit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/handoffs?limit=many", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
