package store

import "github.com/baton-ai/baton/internal/core"

// Defaults returns the workflow templates seeded into a brand new store.
func Defaults() []*core.Workflow {
	review := &core.Workflow{
		ID:             "code-review",
		Name:           "Code Review Workflow",
		Description:    "Comprehensive code review with multiple specialist agents",
		Trigger:        core.TriggerCommand,
		TriggerPattern: "/review",
		Steps: []*core.WorkflowStep{
			{
				ID:          "analyze",
				AgentName:   "code-explorer",
				Action:      core.ActionExecute,
				Description: "Analyze codebase and identify areas for review",
				NextSteps:   []string{"security", "quality"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "security",
				AgentName:   "security-reviewer",
				Action:      core.ActionExecute,
				Description: "Check for security vulnerabilities",
				NextSteps:   []string{"summarize"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "quality",
				AgentName:   "quality-reviewer",
				Action:      core.ActionExecute,
				Description: "Review code quality and best practices",
				NextSteps:   []string{"summarize"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "summarize",
				AgentName:   "master-developer",
				Action:      core.ActionExecute,
				Description: "Compile findings and generate report",
				NextSteps:   []string{},
				NodeType:    core.NodeAgent,
			},
		},
		EntryPoint: "analyze",
	}

	feature := &core.Workflow{
		ID:             "feature-dev",
		Name:           "Feature Development Workflow",
		Description:    "Guided feature implementation with planning and testing",
		Trigger:        core.TriggerCommand,
		TriggerPattern: "/feature",
		Steps: []*core.WorkflowStep{
			{
				ID:          "plan",
				AgentName:   "project-planner",
				Action:      core.ActionExecute,
				Description: "Create implementation plan",
				NextSteps:   []string{"implement"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "implement",
				AgentName:   "master-developer",
				Action:      core.ActionDelegate,
				Description: "Implement the feature",
				NextSteps:   []string{"test"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "test",
				AgentName:   "test-engineer",
				Action:      core.ActionExecute,
				Description: "Write and run tests",
				NextSteps:   []string{"review"},
				NodeType:    core.NodeAgent,
			},
			{
				ID:          "review",
				AgentName:   "code-reviewer",
				Action:      core.ActionExecute,
				Description: "Review implementation",
				NextSteps:   []string{},
				NodeType:    core.NodeAgent,
			},
		},
		EntryPoint: "plan",
	}

	return []*core.Workflow{review, feature}
}
