package compile

import (
	"strings"
	"testing"

	"github.com/baton-ai/baton/internal/core"
)

func pipelineWorkflow(t *testing.T) *core.Workflow {
	t.Helper()
	wf := core.NewWorkflow("Release Pipeline", "Build, verify and ship a release", core.TriggerCommand)
	wf.TriggerPattern = "/release"

	steps := []*core.WorkflowStep{
		{
			ID:          "build",
			AgentName:   "builder",
			Description: "Compile and package the release",
			Inputs:      map[string]interface{}{"branch": "main", "arch": "amd64"},
			Outputs:     []string{"artifact"},
		},
		{
			ID:          "verify",
			AgentName:   "verifier",
			Description: "Run the acceptance suite",
			OnError:     "build",
		},
		{
			ID:          "ship",
			AgentName:   "shipper",
			Description: "Publish the release",
		},
	}
	for _, s := range steps {
		if _, err := wf.AddStep(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := wf.ConnectSteps("build", "verify", nil); err != nil {
		t.Fatal(err)
	}
	if err := wf.ConnectSteps("verify", "ship", &core.Condition{Field: "passed", Op: core.OpEq, Value: true}); err != nil {
		t.Fatal(err)
	}
	return wf
}

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestRenderer_Load(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	for _, name := range []string{"instructions", "skill", "command", "prompt"} {
		if !r.HasTemplate(name) {
			t.Errorf("expected template %q to be loaded, have %v", name, r.ListTemplates())
		}
	}
}

func TestCompiler_Instructions(t *testing.T) {
	c := newCompiler(t)
	doc, err := c.Instructions(pipelineWorkflow(t))
	if err != nil {
		t.Fatalf("Instructions() error = %v", err)
	}

	for _, want := range []string{
		"# Workflow: Release Pipeline",
		"Build, verify and ship a release",
		"Trigger: command (/release)",
		"## Step 1: Compile and package the release",
		"## Step 2: Run the acceptance suite",
		"## Step 3: Publish the release",
		"- Agent: `builder`",
		"- Action: execute",
		"- Next: verify (verifier)",
		"if passed eq true: go to ship",
		"- On error: go to build",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("instructions missing %q\n---\n%s", want, doc)
		}
	}

	// Inputs are sorted by key.
	if strings.Index(doc, "`arch`: amd64") > strings.Index(doc, "`branch`: main") {
		t.Error("inputs should be sorted by key")
	}

	// The last step is marked final.
	if !strings.Contains(doc, "Final step:") {
		t.Error("terminal step should be marked final")
	}
}

func TestCompiler_Instructions_OrderFollowsGraph(t *testing.T) {
	c := newCompiler(t)
	wf := core.NewWorkflow("Ordered", "", core.TriggerManual)
	// Declared out of graph order: entry is step "last" in declaration.
	for _, s := range []*core.WorkflowStep{
		{ID: "b", AgentName: "two", NextSteps: []string{}},
		{ID: "a", AgentName: "one", NextSteps: []string{"b"}},
	} {
		if _, err := wf.AddStep(s); err != nil {
			t.Fatal(err)
		}
	}
	wf.EntryPoint = "a"

	doc, err := c.Instructions(wf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "## Step 1: a") || !strings.Contains(doc, "## Step 2: b") {
		t.Errorf("numbering should follow traversal from the entry point:\n%s", doc)
	}
}

func TestCompiler_Skill(t *testing.T) {
	c := newCompiler(t)
	doc, err := c.Skill(pipelineWorkflow(t))
	if err != nil {
		t.Fatalf("Skill() error = %v", err)
	}

	if strings.HasPrefix(doc, "---") {
		t.Error("skill document must not carry frontmatter")
	}
	for _, want := range []string{
		"# Workflow: Release Pipeline",
		"## Step summary",
		"| 1 | build | builder | execute |",
		"| 3 | ship | shipper | execute |",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("skill missing %q\n---\n%s", want, doc)
		}
	}
}

func TestCompiler_Command(t *testing.T) {
	c := newCompiler(t)
	doc, err := c.Command(pipelineWorkflow(t))
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}

	if !strings.HasPrefix(doc, "---\n") {
		t.Error("command document must start with frontmatter")
	}
	for _, want := range []string{
		"description: Build, verify and ship a release",
		"allowed-tools: Task, Read, Bash, Glob, Grep",
		"## User context",
		"${ARGUMENTS.prompt}",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("command missing %q\n---\n%s", want, doc)
		}
	}
}

func TestCompiler_Command_FallsBackToName(t *testing.T) {
	c := newCompiler(t)
	wf := core.NewWorkflow("Bare", "", core.TriggerManual)

	doc, err := c.Command(wf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "description: Bare") {
		t.Errorf("empty description should fall back to the name:\n%s", doc)
	}
}

func TestCompiler_Prompt(t *testing.T) {
	c := newCompiler(t)
	doc, err := c.Prompt(pipelineWorkflow(t), "/home/u/.claude/workflows/release-pipeline.json")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	if !strings.Contains(doc, "Generated from workflow `release-pipeline` (/home/u/.claude/workflows/release-pipeline.json).") {
		t.Errorf("prompt missing attribution footer:\n%s", doc)
	}
}

func TestCompiler_Artifact(t *testing.T) {
	c := newCompiler(t)
	wf := pipelineWorkflow(t)

	for _, kind := range Kinds() {
		if _, err := c.Artifact(wf, kind, "path.json"); err != nil {
			t.Errorf("Artifact(%s) error = %v", kind, err)
		}
	}

	_, err := c.Artifact(wf, Kind("binary"), "")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !core.IsCategory(err, core.ErrCatValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestKind_IsValid(t *testing.T) {
	for _, kind := range Kinds() {
		if !kind.IsValid() {
			t.Errorf("%s should be valid", kind)
		}
	}
	if Kind("yaml").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
