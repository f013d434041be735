package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baton-ai/baton/internal/core"
)

func TestVisualToWorkflow(t *testing.T) {
	v := &VisualWorkflow{
		Name:        "Release Gate",
		Description: "Gate a release on its checks",
		Trigger:     "manual",
		Nodes: []VisualNode{
			{ID: "check", Type: "agent", X: 10, Y: 20, Agent: "test-engineer",
				Description: "Run the checks", Action: "execute"},
			{ID: "ship", Type: "agent", X: 200, Y: 20, Agent: "devops-engineer",
				Description: "Ship it", Action: "execute"},
			{ID: "hold", Type: "agent", X: 200, Y: 120, Agent: "project-planner",
				Description: "Park the release", Action: "execute"},
		},
		Edges: []VisualEdge{
			{From: "check", To: "ship", Condition: &core.Condition{Field: "passed", Op: core.OpTrue}},
			{From: "check", To: "hold", Condition: &core.Condition{Field: "passed", Op: core.OpFalse}},
		},
	}

	wf, err := v.ToWorkflow()
	require.NoError(t, err)

	assert.Equal(t, "release-gate", wf.ID)
	assert.Equal(t, core.TriggerManual, wf.Trigger)
	assert.Equal(t, "check", wf.EntryPoint)
	require.Len(t, wf.Steps, 3)

	check, ok := wf.Step("check")
	require.True(t, ok)
	assert.Equal(t, "test-engineer", check.AgentName)
	assert.Equal(t, []string{"ship", "hold"}, check.NextSteps)
	assert.Equal(t, float64(10), check.PositionX)
	require.NotNil(t, check.Conditions["ship"])
	assert.Equal(t, core.OpTrue, check.Conditions["ship"].Op)
	require.NotNil(t, check.Conditions["hold"])
	assert.Equal(t, core.OpFalse, check.Conditions["hold"].Op)
}

func TestVisualToWorkflow_Errors(t *testing.T) {
	tests := []struct {
		name     string
		visual   *VisualWorkflow
		wantCode string
	}{
		{
			name:     "no id or name",
			visual:   &VisualWorkflow{Nodes: []VisualNode{{ID: "a"}}},
			wantCode: core.CodeEmptyName,
		},
		{
			name: "node without id",
			visual: &VisualWorkflow{
				Name:  "Broken",
				Nodes: []VisualNode{{Type: "agent"}},
			},
			wantCode: core.CodeInvalidWorkflow,
		},
		{
			name: "duplicate node id",
			visual: &VisualWorkflow{
				Name:  "Broken",
				Nodes: []VisualNode{{ID: "a"}, {ID: "a"}},
			},
			wantCode: core.CodeDuplicateStep,
		},
		{
			name: "edge from unknown node",
			visual: &VisualWorkflow{
				Name:  "Broken",
				Nodes: []VisualNode{{ID: "a"}},
				Edges: []VisualEdge{{From: "ghost", To: "a"}},
			},
			wantCode: core.CodeDanglingEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.visual.ToWorkflow()
			require.Error(t, err)

			var domErr *core.DomainError
			require.True(t, errors.As(err, &domErr), "expected a domain error, got %v", err)
			assert.Equal(t, tt.wantCode, domErr.Code)
		})
	}
}

func TestVisualFromWorkflow(t *testing.T) {
	wf := &core.Workflow{
		ID:          "release-gate",
		Name:        "Release Gate",
		Description: "Gate a release on its checks",
		Trigger:     core.TriggerCommand,
		Steps: []*core.WorkflowStep{
			{
				ID:        "check",
				AgentName: "test-engineer",
				Action:    core.ActionExecute,
				NextSteps: []string{"ship", "hold"},
				Conditions: map[string]*core.Condition{
					"ship": {Field: "passed", Op: core.OpTrue},
				},
				PositionX: 10,
				PositionY: 20,
				NodeType:  core.NodeAgent,
			},
			{
				ID:        "ship",
				AgentName: "devops-engineer",
				Action:    core.ActionExecute,
				NextSteps: []string{},
				NodeType:  core.NodeAgent,
			},
			{
				ID:        "hold",
				AgentName: "project-planner",
				Action:    core.ActionExecute,
				NextSteps: []string{},
				NodeType:  core.NodeAgent,
			},
		},
		EntryPoint: "check",
	}

	v := VisualFromWorkflow(wf)

	assert.Equal(t, "release-gate", v.ID)
	assert.Equal(t, "command", v.Trigger)
	assert.Equal(t, "check", v.EntryPoint)
	require.Len(t, v.Nodes, 3)
	require.Len(t, v.Edges, 2)

	assert.Equal(t, "check", v.Nodes[0].ID)
	assert.Equal(t, "agent", v.Nodes[0].Type)
	assert.Equal(t, float64(20), v.Nodes[0].Y)

	assert.Equal(t, VisualEdge{From: "check", To: "ship",
		Condition: &core.Condition{Field: "passed", Op: core.OpTrue}}, v.Edges[0])
	assert.Equal(t, VisualEdge{From: "check", To: "hold"}, v.Edges[1])
}

func TestVisualMapping_RoundTrip(t *testing.T) {
	v := VisualFromWorkflow(mustToWorkflow(t, &VisualWorkflow{
		Name:    "Loop Test",
		Trigger: "manual",
		Nodes: []VisualNode{
			{ID: "one", Type: "agent", Agent: "master-developer", Action: "execute"},
			{ID: "two", Type: "agent", Agent: "test-engineer", Action: "execute"},
		},
		Edges: []VisualEdge{
			{From: "one", To: "two", Condition: &core.Condition{Field: "ok", Op: core.OpTrue}},
		},
	}))

	again, err := v.ToWorkflow()
	require.NoError(t, err)

	first, ok := again.Step("one")
	require.True(t, ok)
	assert.Equal(t, []string{"two"}, first.NextSteps)
	require.NotNil(t, first.Conditions["two"])
	assert.Equal(t, "ok", first.Conditions["two"].Field)
	assert.Equal(t, "loop-test", again.ID)
	assert.Equal(t, "one", again.EntryPoint)
}

func mustToWorkflow(t *testing.T, v *VisualWorkflow) *core.Workflow {
	t.Helper()
	wf, err := v.ToWorkflow()
	require.NoError(t, err)
	return wf
}
