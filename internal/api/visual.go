package api

import (
	"fmt"

	"github.com/baton-ai/baton/internal/core"
)

// VisualNode is one node in the graphical editor format.
type VisualNode struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	X           float64                `json:"x"`
	Y           float64                `json:"y"`
	Agent       string                 `json:"agent"`
	Description string                 `json:"description"`
	Action      string                 `json:"action"`
	Inputs      map[string]interface{} `json:"inputs,omitempty"`
	Outputs     []string               `json:"outputs,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	OnError     string                 `json:"on_error,omitempty"`
}

// VisualEdge is one directed edge in the graphical editor format.
type VisualEdge struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Condition *core.Condition `json:"condition,omitempty"`
}

// VisualWorkflow is the node/edge representation used by graphical
// editors. It converts losslessly to and from the canonical form.
type VisualWorkflow struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Trigger        string       `json:"trigger"`
	TriggerPattern string       `json:"trigger_pattern,omitempty"`
	EntryPoint     string       `json:"entry_point,omitempty"`
	Nodes          []VisualNode `json:"nodes"`
	Edges          []VisualEdge `json:"edges"`
}

// ToWorkflow converts the visual payload into a canonical workflow. Edges
// are applied in listed order, so each node's next_steps preserves the
// editor's ordering. The entry point defaults to the first node.
func (v *VisualWorkflow) ToWorkflow() (*core.Workflow, error) {
	id := v.ID
	if id == "" {
		id = core.Slugify(v.Name)
	}
	if id == "" {
		return nil, core.ErrValidation(core.CodeEmptyName,
			"workflow needs an id or a name")
	}

	wf := &core.Workflow{
		ID:             id,
		Name:           v.Name,
		Description:    v.Description,
		Trigger:        core.Trigger(v.Trigger),
		TriggerPattern: v.TriggerPattern,
		EntryPoint:     v.EntryPoint,
		Steps:          make([]*core.WorkflowStep, 0, len(v.Nodes)),
	}

	steps := make(map[string]*core.WorkflowStep, len(v.Nodes))
	for _, node := range v.Nodes {
		if node.ID == "" {
			return nil, core.ErrValidation(core.CodeInvalidWorkflow,
				"visual node is missing an id")
		}
		if steps[node.ID] != nil {
			return nil, core.ErrValidation(core.CodeDuplicateStep,
				fmt.Sprintf("duplicate node id %s", node.ID))
		}
		step := &core.WorkflowStep{
			ID:          node.ID,
			AgentName:   node.Agent,
			Action:      core.Action(node.Action),
			Description: node.Description,
			Inputs:      node.Inputs,
			Outputs:     node.Outputs,
			NextSteps:   make([]string, 0),
			OnError:     node.OnError,
			PositionX:   node.X,
			PositionY:   node.Y,
			NodeType:    core.NodeType(node.Type),
			Parameters:  node.Parameters,
		}
		steps[node.ID] = step
		wf.Steps = append(wf.Steps, step)
	}

	for _, edge := range v.Edges {
		from, ok := steps[edge.From]
		if !ok {
			return nil, core.ErrValidation(core.CodeDanglingEdge,
				fmt.Sprintf("edge references unknown node %s", edge.From))
		}
		from.NextSteps = append(from.NextSteps, edge.To)
		if edge.Condition != nil {
			if from.Conditions == nil {
				from.Conditions = make(map[string]*core.Condition)
			}
			from.Conditions[edge.To] = edge.Condition
		}
	}

	if wf.EntryPoint == "" && len(wf.Steps) > 0 {
		wf.EntryPoint = wf.Steps[0].ID
	}

	wf.Normalize()
	return wf, nil
}

// VisualFromWorkflow converts a canonical workflow into the visual
// format. Edges come out in each step's next_steps order.
func VisualFromWorkflow(wf *core.Workflow) *VisualWorkflow {
	v := &VisualWorkflow{
		ID:             wf.ID,
		Name:           wf.Name,
		Description:    wf.Description,
		Trigger:        string(wf.Trigger),
		TriggerPattern: wf.TriggerPattern,
		EntryPoint:     wf.EntryPoint,
		Nodes:          make([]VisualNode, 0, len(wf.Steps)),
		Edges:          make([]VisualEdge, 0),
	}

	for _, step := range wf.Steps {
		v.Nodes = append(v.Nodes, VisualNode{
			ID:          step.ID,
			Type:        string(step.NodeType),
			X:           step.PositionX,
			Y:           step.PositionY,
			Agent:       step.AgentName,
			Description: step.Description,
			Action:      string(step.Action),
			Inputs:      step.Inputs,
			Outputs:     step.Outputs,
			Parameters:  step.Parameters,
			OnError:     step.OnError,
		})
		for _, next := range step.NextSteps {
			v.Edges = append(v.Edges, VisualEdge{
				From:      step.ID,
				To:        next,
				Condition: step.Conditions[next],
			})
		}
	}

	return v
}
