package graph

import (
	"testing"

	"github.com/baton-ai/baton/internal/core"
)

func linearWorkflow(ids ...string) *core.Workflow {
	wf := &core.Workflow{ID: "wf", Name: "wf", Trigger: core.TriggerManual}
	for i, id := range ids {
		step := &core.WorkflowStep{ID: id, Action: core.ActionExecute, NodeType: core.NodeAgent}
		if i < len(ids)-1 {
			step.NextSteps = []string{ids[i+1]}
		}
		wf.Steps = append(wf.Steps, step)
	}
	if len(ids) > 0 {
		wf.EntryPoint = ids[0]
	}
	return wf
}

func orderedIDs(steps []OrderedStep) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.Step.ID
	}
	return ids
}

func TestOrder_Linear(t *testing.T) {
	wf := linearWorkflow("a", "b", "c")
	got := Order(wf)

	if len(got) != 3 {
		t.Fatalf("expected 3 ordered steps, got %d", len(got))
	}
	for i, os := range got {
		if os.Number != i+1 {
			t.Fatalf("expected contiguous numbering, got %d at index %d", os.Number, i)
		}
	}
	want := []string{"a", "b", "c"}
	for i, id := range orderedIDs(got) {
		if id != want[i] {
			t.Fatalf("expected order %v, got %v", want, orderedIDs(got))
		}
	}
}

func TestOrder_DiamondFirstVisitWins(t *testing.T) {
	// a -> {b, c} -> d : d is reachable twice but ordered once, breadth
	// first, so b and c come before d.
	wf := &core.Workflow{
		ID:         "wf",
		EntryPoint: "a",
		Steps: []*core.WorkflowStep{
			{ID: "a", NextSteps: []string{"b", "c"}},
			{ID: "b", NextSteps: []string{"d"}},
			{ID: "c", NextSteps: []string{"d"}},
			{ID: "d"},
		},
	}
	got := orderedIDs(Order(wf))
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOrder_TerminatesOnBackEdge(t *testing.T) {
	// loop_start -> body -> loop_end -> loop_start
	wf := &core.Workflow{
		ID:         "wf",
		EntryPoint: "loop-start",
		Steps: []*core.WorkflowStep{
			{ID: "loop-start", NodeType: core.NodeLoopStart, NextSteps: []string{"body"}},
			{ID: "body", NextSteps: []string{"loop-end"}},
			{ID: "loop-end", NodeType: core.NodeLoopEnd, NextSteps: []string{"loop-start"}},
		},
	}
	got := Order(wf)
	if len(got) != 3 {
		t.Fatalf("expected every step ordered exactly once, got %d", len(got))
	}
	seen := make(map[string]int)
	for _, os := range got {
		seen[os.Step.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("step %s numbered %d times", id, n)
		}
	}
}

func TestOrder_NoEntryPointUsesDeclarationOrder(t *testing.T) {
	wf := linearWorkflow("a", "b", "c")
	wf.EntryPoint = ""
	// Declaration order seeds the traversal, so the result matches the
	// declared sequence even without an entry point.
	got := orderedIDs(Order(wf))
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOrder_UnreachableStepsAppended(t *testing.T) {
	wf := &core.Workflow{
		ID:         "wf",
		EntryPoint: "a",
		Steps: []*core.WorkflowStep{
			{ID: "a", NextSteps: []string{"b"}},
			{ID: "orphan"},
			{ID: "b"},
		},
	}
	got := orderedIDs(Order(wf))
	want := []string{"a", "b", "orphan"}
	if len(got) != 3 {
		t.Fatalf("expected 3 steps, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOrder_DanglingEdgeIgnored(t *testing.T) {
	wf := &core.Workflow{
		ID:         "wf",
		EntryPoint: "a",
		Steps: []*core.WorkflowStep{
			{ID: "a", NextSteps: []string{"ghost", "b"}},
			{ID: "b"},
		},
	}
	got := orderedIDs(Order(wf))
	want := []string{"a", "b"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}
