package graph

import (
	"fmt"
	"maps"
	"strings"

	"github.com/baton-ai/baton/internal/core"
)

// Diagram renders a workflow as an indented ASCII tree. Branches carry their
// own copy of the visited set, so a step shared by two branches is drawn
// under each; a back-edge is drawn once as a loop marker instead of
// recursing.
func Diagram(wf *core.Workflow) string {
	lines := []string{
		fmt.Sprintf("Workflow: %s", wf.Name),
		fmt.Sprintf("Trigger: %s", wf.Trigger),
		"",
	}

	index := make(map[string]*core.WorkflowStep, len(wf.Steps))
	for _, s := range wf.Steps {
		index[s.ID] = s
	}

	var add func(id string, indent int, visited map[string]bool)
	add = func(id string, indent int, visited map[string]bool) {
		prefix := strings.Repeat("  ", indent)
		if visited[id] {
			lines = append(lines, fmt.Sprintf("%s[-> %s (loop)]", prefix, id))
			return
		}
		visited[id] = true

		step, ok := index[id]
		if !ok {
			return
		}
		lines = append(lines, fmt.Sprintf("%s+-- [%s]", prefix, step.AgentName))
		lines = append(lines, fmt.Sprintf("%s|   %s", prefix, step.Description))
		for _, next := range step.NextSteps {
			lines = append(lines, prefix+"|")
			add(next, indent+1, maps.Clone(visited))
		}
	}

	if wf.EntryPoint != "" {
		add(wf.EntryPoint, 0, make(map[string]bool))
	} else {
		for _, s := range wf.Steps {
			add(s.ID, 0, make(map[string]bool))
		}
	}

	return strings.Join(lines, "\n")
}
