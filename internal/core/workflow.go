package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Trigger describes how a workflow is meant to be started.
type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerCommand Trigger = "command"
	TriggerPattern Trigger = "pattern"
	TriggerEvent   Trigger = "event"
)

// IsValid reports whether the trigger is a known variant.
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerManual, TriggerCommand, TriggerPattern, TriggerEvent:
		return true
	}
	return false
}

// Action describes what a step asks of its agent.
type Action string

const (
	ActionExecute   Action = "execute"
	ActionDelegate  Action = "delegate"
	ActionWait      Action = "wait"
	ActionCondition Action = "condition"
	ActionLoop      Action = "loop"
)

// IsValid reports whether the action is a known variant.
func (a Action) IsValid() bool {
	switch a {
	case ActionExecute, ActionDelegate, ActionWait, ActionCondition, ActionLoop:
		return true
	}
	return false
}

// NodeType describes the structural role of a step in the graph.
type NodeType string

const (
	NodeStart       NodeType = "start"
	NodeEnd         NodeType = "end"
	NodeAgent       NodeType = "agent"
	NodeConditional NodeType = "conditional"
	NodeLoopStart   NodeType = "loop_start"
	NodeLoopEnd     NodeType = "loop_end"
	NodeHITL        NodeType = "hitl"
	NodeWait        NodeType = "wait"
	NodeParallel    NodeType = "parallel"
	NodeJoin        NodeType = "join"
)

// IsValid reports whether the node type is a known variant.
func (n NodeType) IsValid() bool {
	switch n {
	case NodeStart, NodeEnd, NodeAgent, NodeConditional, NodeLoopStart,
		NodeLoopEnd, NodeHITL, NodeWait, NodeParallel, NodeJoin:
		return true
	}
	return false
}

// WorkflowStep is a single node in a workflow graph. Outgoing edges live in
// NextSteps (ordered); Conditions optionally guards individual edges.
type WorkflowStep struct {
	ID          string                 `json:"id"`
	AgentName   string                 `json:"agent_name"`
	Action      Action                 `json:"action"`
	Description string                 `json:"description"`
	Inputs      map[string]interface{} `json:"inputs,omitempty"`
	Outputs     []string               `json:"outputs,omitempty"`
	NextSteps   []string               `json:"next_steps"`
	Conditions  map[string]*Condition  `json:"conditions,omitempty"`
	OnError     string                 `json:"on_error,omitempty"`
	PositionX   float64                `json:"position_x"`
	PositionY   float64                `json:"position_y"`
	NodeType    NodeType               `json:"node_type"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the step.
func (s *WorkflowStep) Clone() *WorkflowStep {
	c := *s
	if s.Inputs != nil {
		c.Inputs = make(map[string]interface{}, len(s.Inputs))
		for k, v := range s.Inputs {
			c.Inputs[k] = v
		}
	}
	c.Outputs = append([]string(nil), s.Outputs...)
	c.NextSteps = append([]string(nil), s.NextSteps...)
	if s.Conditions != nil {
		c.Conditions = make(map[string]*Condition, len(s.Conditions))
		for k, v := range s.Conditions {
			cond := *v
			c.Conditions[k] = &cond
		}
	}
	if s.Parameters != nil {
		c.Parameters = make(map[string]interface{}, len(s.Parameters))
		for k, v := range s.Parameters {
			c.Parameters[k] = v
		}
	}
	return &c
}

// Workflow is a named, persisted directed graph of steps.
type Workflow struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Trigger        Trigger                `json:"trigger"`
	TriggerPattern string                 `json:"trigger_pattern,omitempty"`
	Steps          []*WorkflowStep        `json:"steps"`
	EntryPoint     string                 `json:"entry_point,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify derives a workflow id from a display name: lowercased, spaces and
// underscores become dashes, everything else outside [a-z0-9-] is dropped.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return slugStrip.ReplaceAllString(s, "")
}

// NewWorkflow creates an empty workflow with an id derived from the name.
func NewWorkflow(name, description string, trigger Trigger) *Workflow {
	if trigger == "" {
		trigger = TriggerManual
	}
	now := time.Now()
	return &Workflow{
		ID:          Slugify(name),
		Name:        name,
		Description: description,
		Trigger:     trigger,
		Steps:       make([]*WorkflowStep, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Step returns the step with the given id.
func (w *Workflow) Step(id string) (*WorkflowStep, bool) {
	for _, s := range w.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// AddStep appends a step to the workflow. An empty step id is assigned
// "step-N" from the step count; the first step becomes the entry point.
func (w *Workflow) AddStep(step *WorkflowStep) (*WorkflowStep, error) {
	if step == nil {
		return nil, ErrValidation(CodeInvalidWorkflow, "step cannot be nil")
	}
	if step.ID == "" {
		step.ID = fmt.Sprintf("step-%d", len(w.Steps)+1)
	}
	if _, exists := w.Step(step.ID); exists {
		return nil, ErrValidation(CodeDuplicateStep,
			fmt.Sprintf("step %s already exists in workflow %s", step.ID, w.ID))
	}
	if step.Action == "" {
		step.Action = ActionExecute
	}
	if step.NodeType == "" {
		step.NodeType = NodeAgent
	}
	if step.NextSteps == nil {
		step.NextSteps = make([]string, 0)
	}
	w.Steps = append(w.Steps, step)
	if len(w.Steps) == 1 {
		w.EntryPoint = step.ID
	}
	return step, nil
}

// ConnectSteps adds an edge from one step to another, optionally guarded by
// a condition. The edge is not duplicated if it already exists.
func (w *Workflow) ConnectSteps(from, to string, cond *Condition) error {
	step, ok := w.Step(from)
	if !ok {
		return ErrNotFound("step", from)
	}
	found := false
	for _, next := range step.NextSteps {
		if next == to {
			found = true
			break
		}
	}
	if !found {
		step.NextSteps = append(step.NextSteps, to)
	}
	if cond != nil {
		if step.Conditions == nil {
			step.Conditions = make(map[string]*Condition)
		}
		step.Conditions[to] = cond
	}
	return nil
}

// EntryStep returns the entry point step, if one is set and resolvable.
func (w *Workflow) EntryStep() (*WorkflowStep, bool) {
	if w.EntryPoint == "" {
		return nil, false
	}
	return w.Step(w.EntryPoint)
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	c := *w
	c.Steps = make([]*WorkflowStep, len(w.Steps))
	for i, s := range w.Steps {
		c.Steps[i] = s.Clone()
	}
	if w.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(w.Metadata))
		for k, v := range w.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Validate checks workflow invariants: non-empty id, known enum variants,
// unique step ids, and every edge/condition/on_error/entry_point reference
// resolving to a declared step.
func (w *Workflow) Validate() error {
	if w.ID == "" {
		return ErrValidation(CodeInvalidWorkflow, "workflow id cannot be empty")
	}
	if !w.Trigger.IsValid() {
		return ErrValidation(CodeInvalidTrigger,
			fmt.Sprintf("unknown trigger %q in workflow %s", w.Trigger, w.ID))
	}
	seen := make(map[string]bool, len(w.Steps))
	for _, s := range w.Steps {
		if s.ID == "" {
			return ErrValidation(CodeInvalidWorkflow,
				fmt.Sprintf("workflow %s has a step with an empty id", w.ID))
		}
		if seen[s.ID] {
			return ErrValidation(CodeDuplicateStep,
				fmt.Sprintf("duplicate step id %s in workflow %s", s.ID, w.ID))
		}
		seen[s.ID] = true
		if !s.Action.IsValid() {
			return ErrValidation(CodeInvalidAction,
				fmt.Sprintf("step %s has unknown action %q", s.ID, s.Action))
		}
		if !s.NodeType.IsValid() {
			return ErrValidation(CodeInvalidNodeType,
				fmt.Sprintf("step %s has unknown node type %q", s.ID, s.NodeType))
		}
	}
	for _, s := range w.Steps {
		for _, next := range s.NextSteps {
			if !seen[next] {
				return ErrValidation(CodeDanglingEdge,
					fmt.Sprintf("step %s points at unknown step %s", s.ID, next))
			}
		}
		for target := range s.Conditions {
			if !seen[target] {
				return ErrValidation(CodeDanglingEdge,
					fmt.Sprintf("step %s has a condition for unknown step %s", s.ID, target))
			}
		}
		if s.OnError != "" && !seen[s.OnError] {
			return ErrValidation(CodeDanglingEdge,
				fmt.Sprintf("step %s has on_error pointing at unknown step %s", s.ID, s.OnError))
		}
	}
	if w.EntryPoint != "" && !seen[w.EntryPoint] {
		return ErrValidation(CodeBadEntryPoint,
			fmt.Sprintf("entry point %s does not reference a step in workflow %s", w.EntryPoint, w.ID))
	}
	return nil
}

// Normalize fills enum zero values with their defaults and ensures slice
// fields are non-nil. Used when ingesting externally produced definitions.
func (w *Workflow) Normalize() {
	if w.Trigger == "" {
		w.Trigger = TriggerManual
	}
	if w.Steps == nil {
		w.Steps = make([]*WorkflowStep, 0)
	}
	for _, s := range w.Steps {
		if s.Action == "" {
			s.Action = ActionExecute
		}
		if s.NodeType == "" {
			s.NodeType = NodeAgent
		}
		if s.NextSteps == nil {
			s.NextSteps = make([]string, 0)
		}
	}
}
