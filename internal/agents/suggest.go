package agents

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 5

// suggestionRule maps a task keyword to candidate agents, in priority order.
type suggestionRule struct {
	keyword string
	agents  []string
}

// suggestionRules is evaluated in order; earlier rules rank first.
var suggestionRules = []suggestionRule{
	{"test", []string{"test-engineer", "quality-reviewer"}},
	{"security", []string{"security-reviewer"}},
	{"python", []string{"python-dev"}},
	{"typescript", []string{"typescript-dev"}},
	{"frontend", []string{"typescript-dev", "frontend-design"}},
	{"database", []string{"db-engineer"}},
	{"deploy", []string{"devops-engineer", "infra-engineer"}},
	{"review", []string{"code-reviewer", "quality-reviewer"}},
	{"plan", []string{"project-planner", "task-decomposer"}},
	{"document", []string{"doc-curator"}},
}

// Suggest proposes agents for the next step of a task. The keyword table is
// tried first; when no keyword hits, catalog names are fuzzy-matched against
// the task words. The current agent is excluded, duplicates dropped, and the
// result capped at five names.
func (r *Registry) Suggest(currentAgent, task string) []string {
	taskLower := strings.ToLower(task)

	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)
	add := func(name string) bool {
		if name == currentAgent || seen[name] {
			return len(suggestions) < maxSuggestions
		}
		seen[name] = true
		suggestions = append(suggestions, name)
		return len(suggestions) < maxSuggestions
	}

	for _, rule := range suggestionRules {
		if !strings.Contains(taskLower, rule.keyword) {
			continue
		}
		for _, agent := range rule.agents {
			if !add(agent) {
				return suggestions
			}
		}
	}
	if len(suggestions) > 0 {
		return suggestions
	}

	// No keyword hit: fuzzy-match catalog names against the task words.
	names := r.Names()
	for _, word := range strings.Fields(taskLower) {
		if len(word) < 3 {
			continue
		}
		for _, match := range fuzzy.Find(word, names) {
			if !add(match.Str) {
				return suggestions
			}
		}
	}
	return suggestions
}
