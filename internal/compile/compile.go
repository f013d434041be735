package compile

import (
	"fmt"
	"sort"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/graph"
)

// Kind identifies one of the exportable artifact shapes.
type Kind string

const (
	KindSkill   Kind = "skill"
	KindCommand Kind = "command"
	KindPrompt  Kind = "prompt"
)

// IsValid reports whether the kind is a known variant.
func (k Kind) IsValid() bool {
	switch k {
	case KindSkill, KindCommand, KindPrompt:
		return true
	}
	return false
}

// Kinds lists all artifact kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindSkill, KindCommand, KindPrompt}
}

// Compiler renders workflows into artifacts.
type Compiler struct {
	renderer *Renderer
}

// New creates a compiler with its templates loaded.
func New() (*Compiler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Compiler{renderer: renderer}, nil
}

// keyValue is a rendered input pair.
type keyValue struct {
	Key   string
	Value string
}

// stepView is the per-step data handed to the templates.
type stepView struct {
	Number     int
	ID         string
	Title      string
	Agent      string
	Action     string
	Inputs     []keyValue
	Outputs    []string
	Next       []string
	Conditions []string
	OnError    string
	Final      bool
}

// instructionsView is the top-level template payload.
type instructionsView struct {
	ID             string
	Name           string
	Description    string
	Trigger        string
	TriggerPattern string
	Steps          []stepView
}

func buildView(wf *core.Workflow) instructionsView {
	view := instructionsView{
		ID:             wf.ID,
		Name:           wf.Name,
		Description:    wf.Description,
		Trigger:        string(wf.Trigger),
		TriggerPattern: wf.TriggerPattern,
	}

	for _, ordered := range graph.Order(wf) {
		step := ordered.Step
		sv := stepView{
			Number:  ordered.Number,
			ID:      step.ID,
			Title:   step.Description,
			Agent:   step.AgentName,
			Action:  string(step.Action),
			Outputs: step.Outputs,
			OnError: step.OnError,
			Final:   len(step.NextSteps) == 0,
		}
		if sv.Title == "" {
			sv.Title = step.ID
		}

		keys := make([]string, 0, len(step.Inputs))
		for k := range step.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sv.Inputs = append(sv.Inputs, keyValue{Key: k, Value: fmt.Sprintf("%v", step.Inputs[k])})
		}

		for _, next := range step.NextSteps {
			sv.Next = append(sv.Next, describeTarget(wf, next))
		}

		condTargets := make([]string, 0, len(step.Conditions))
		for target := range step.Conditions {
			condTargets = append(condTargets, target)
		}
		sort.Strings(condTargets)
		for _, target := range condTargets {
			sv.Conditions = append(sv.Conditions, describeCondition(step.Conditions[target], target))
		}

		view.Steps = append(view.Steps, sv)
	}
	return view
}

// describeTarget names an edge target, including the responsible agent when
// the target resolves.
func describeTarget(wf *core.Workflow, id string) string {
	if step, ok := wf.Step(id); ok && step.AgentName != "" {
		return fmt.Sprintf("%s (%s)", id, step.AgentName)
	}
	return id
}

// describeCondition renders an edge guard as
// "if field op value: go to target".
func describeCondition(cond *core.Condition, target string) string {
	op := cond.Op
	if op == "" {
		op = core.OpEq
	}
	if cond.Value == nil {
		return fmt.Sprintf("if %s %s: go to %s", cond.Field, op, target)
	}
	return fmt.Sprintf("if %s %s %v: go to %s", cond.Field, op, cond.Value, target)
}

// Instructions renders the natural-language execution document.
func (c *Compiler) Instructions(wf *core.Workflow) (string, error) {
	return c.renderer.render("instructions", buildView(wf))
}

// skillView wraps the instructions with the summary table rows.
type skillView struct {
	Instructions string
	Steps        []stepView
}

// Skill renders the frontmatter-free skill document.
func (c *Compiler) Skill(wf *core.Workflow) (string, error) {
	instructions, err := c.Instructions(wf)
	if err != nil {
		return "", err
	}
	return c.renderer.render("skill", skillView{
		Instructions: instructions,
		Steps:        buildView(wf).Steps,
	})
}

// commandView carries the frontmatter fields plus the instructions.
type commandView struct {
	Description  string
	Instructions string
}

// Command renders the slash-command document with its tool frontmatter.
func (c *Compiler) Command(wf *core.Workflow) (string, error) {
	instructions, err := c.Instructions(wf)
	if err != nil {
		return "", err
	}
	description := wf.Description
	if description == "" {
		description = wf.Name
	}
	return c.renderer.render("command", commandView{
		Description:  description,
		Instructions: instructions,
	})
}

// promptView carries the instructions plus the attribution fields.
type promptView struct {
	Instructions string
	WorkflowID   string
	SourcePath   string
}

// Prompt renders the portable prompt document. sourcePath names the backing
// store file for the attribution footer.
func (c *Compiler) Prompt(wf *core.Workflow, sourcePath string) (string, error) {
	instructions, err := c.Instructions(wf)
	if err != nil {
		return "", err
	}
	return c.renderer.render("prompt", promptView{
		Instructions: instructions,
		WorkflowID:   wf.ID,
		SourcePath:   sourcePath,
	})
}

// Artifact renders the artifact body for the given kind.
func (c *Compiler) Artifact(wf *core.Workflow, kind Kind, sourcePath string) (string, error) {
	switch kind {
	case KindSkill:
		return c.Skill(wf)
	case KindCommand:
		return c.Command(wf)
	case KindPrompt:
		return c.Prompt(wf, sourcePath)
	default:
		return "", core.ErrValidation(core.CodeInvalidExport,
			fmt.Sprintf("unknown export kind %q", kind))
	}
}
