// Package graph provides read-only analyses over workflow graphs: the
// presentation ordering, the complexity score, and the ASCII diagram.
package graph

import (
	"github.com/baton-ai/baton/internal/core"
)

// OrderedStep pairs a step with its 1-based presentation number.
type OrderedStep struct {
	Number int
	Step   *core.WorkflowStep
}

// Order produces the sequential presentation ordering of a workflow's steps.
//
// Traversal is breadth-first over next_steps edges starting at the entry
// point (or, when none is set, at each step in declaration order). A step is
// numbered the first time it is dequeued and never revisited, so traversal
// terminates on cyclic graphs and first-visit-wins breaks ties for steps
// reachable via multiple paths. Steps unreachable from the entry point are
// traversed afterwards in declaration order, so every declared step gets
// exactly one number 1..N.
func Order(wf *core.Workflow) []OrderedStep {
	index := make(map[string]*core.WorkflowStep, len(wf.Steps))
	for _, s := range wf.Steps {
		index[s.ID] = s
	}

	visited := make(map[string]bool, len(wf.Steps))
	ordered := make([]OrderedStep, 0, len(wf.Steps))

	bfs := func(root string) {
		if _, ok := index[root]; !ok {
			return
		}
		if visited[root] {
			return
		}
		visited[root] = true
		queue := []string{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			step := index[id]
			ordered = append(ordered, OrderedStep{Number: len(ordered) + 1, Step: step})
			for _, next := range step.NextSteps {
				if _, ok := index[next]; !ok {
					continue
				}
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	if wf.EntryPoint != "" {
		bfs(wf.EntryPoint)
	}
	for _, s := range wf.Steps {
		bfs(s.ID)
	}
	return ordered
}
