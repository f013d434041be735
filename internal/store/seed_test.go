package store

import (
	"testing"

	"github.com/baton-ai/baton/internal/core"
)

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	if len(defaults) != 2 {
		t.Fatalf("expected 2 default workflows, got %d", len(defaults))
	}

	byID := make(map[string]*core.Workflow)
	for _, wf := range defaults {
		if err := wf.Validate(); err != nil {
			t.Errorf("default %s does not validate: %v", wf.ID, err)
		}
		byID[wf.ID] = wf
	}

	review, ok := byID["code-review"]
	if !ok {
		t.Fatal("code-review default missing")
	}
	analyze, _ := review.Step("analyze")
	if analyze == nil || len(analyze.NextSteps) != 2 {
		t.Fatalf("analyze should fan out to two reviewers: %+v", analyze)
	}
	for _, id := range []string{"security", "quality"} {
		step, ok := review.Step(id)
		if !ok {
			t.Fatalf("step %s missing", id)
		}
		if len(step.NextSteps) != 1 || step.NextSteps[0] != "summarize" {
			t.Errorf("step %s should join at summarize, got %v", id, step.NextSteps)
		}
	}

	feature, ok := byID["feature-dev"]
	if !ok {
		t.Fatal("feature-dev default missing")
	}
	if feature.EntryPoint != "plan" || feature.TriggerPattern != "/feature" {
		t.Errorf("feature-dev entry=%q pattern=%q", feature.EntryPoint, feature.TriggerPattern)
	}
	implement, _ := feature.Step("implement")
	if implement == nil || implement.Action != core.ActionDelegate {
		t.Errorf("implement step should delegate: %+v", implement)
	}
}

func TestDefaults_FreshCopies(t *testing.T) {
	a := Defaults()
	b := Defaults()
	a[0].Steps[0].NextSteps[0] = "tampered"
	if b[0].Steps[0].NextSteps[0] == "tampered" {
		t.Error("Defaults should return fresh values on every call")
	}
}
