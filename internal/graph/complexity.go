package graph

import (
	"fmt"
	"strings"

	"github.com/baton-ai/baton/internal/core"
)

// Export recommendations.
const (
	RecommendSkill   = "skill"
	RecommendCommand = "command"
	RecommendBoth    = "both"
)

// modelKeywords are the external-model markers looked for in step
// descriptions. Order fixes the order of recorded references.
var modelKeywords = []string{"gemini", "gpt", "codex", "openai", "anthropic", "llama", "mistral"}

// Report is the result of analyzing a workflow's shape.
type Report struct {
	WorkflowID        string   `json:"workflow_id"`
	Score             int      `json:"score"`
	RecommendedExport string   `json:"recommended_export"`
	Reasons           []string `json:"reasons"`
	ModelReferences   []string `json:"model_references,omitempty"`
}

// Analyze scores a workflow's shape on a fixed additive table (capped at
// 100) and recommends an export form. The table is a compatibility
// contract: callers depend on exact scores.
func Analyze(wf *core.Workflow) *Report {
	report := &Report{
		WorkflowID: wf.ID,
		Reasons:    make([]string, 0, 4),
	}

	steps := len(wf.Steps)
	switch {
	case steps >= 7:
		report.Score += 50
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d steps (+50)", steps))
	case steps >= 4:
		report.Score += 30
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d steps (+30)", steps))
	default:
		report.Score += 10
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d steps (+10)", steps))
	}

	var hasParallel, hasConditional, hasHITL, hasLoop bool
	for _, s := range wf.Steps {
		switch s.NodeType {
		case core.NodeParallel, core.NodeJoin:
			hasParallel = true
		case core.NodeConditional:
			hasConditional = true
		case core.NodeHITL:
			hasHITL = true
		case core.NodeLoopStart, core.NodeLoopEnd:
			hasLoop = true
		}
	}

	report.ModelReferences = modelReferences(wf)

	if hasParallel {
		report.Score += 20
		report.Reasons = append(report.Reasons, "parallel fan-out (+20)")
	}
	if len(report.ModelReferences) > 0 {
		report.Score += 15
		report.Reasons = append(report.Reasons,
			fmt.Sprintf("external model references (+15): %s", strings.Join(report.ModelReferences, ", ")))
	}
	if hasConditional {
		report.Score += 10
		report.Reasons = append(report.Reasons, "conditional branching (+10)")
	}
	if hasHITL {
		report.Score += 10
		report.Reasons = append(report.Reasons, "human-in-the-loop gate (+10)")
	}
	if hasLoop {
		report.Score += 10
		report.Reasons = append(report.Reasons, "loop construct (+10)")
	}
	if wf.Trigger == core.TriggerPattern {
		report.Score += 5
		report.Reasons = append(report.Reasons, "pattern trigger (+5)")
	}

	if report.Score > 100 {
		report.Score = 100
	}

	switch {
	case report.Score >= 50 || hasParallel || len(report.ModelReferences) > 0:
		report.RecommendedExport = RecommendSkill
	case steps <= 4 && !hasParallel:
		report.RecommendedExport = RecommendCommand
	default:
		report.RecommendedExport = RecommendBoth
	}

	return report
}

// modelReferences collects which external-model keywords appear in step
// descriptions, each keyword recorded once.
func modelReferences(wf *core.Workflow) []string {
	var refs []string
	for _, kw := range modelKeywords {
		for _, s := range wf.Steps {
			if strings.Contains(strings.ToLower(s.Description), kw) {
				refs = append(refs, kw)
				break
			}
		}
	}
	return refs
}
