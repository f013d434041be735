package events

// Event type constants for workflow definition events.
const (
	TypeWorkflowSaved   = "workflow_saved"
	TypeWorkflowDeleted = "workflow_deleted"
)

// WorkflowSavedEvent is emitted when a workflow definition is created or updated.
type WorkflowSavedEvent struct {
	BaseEvent
	Name  string `json:"name"`
	Steps int    `json:"steps"`
}

// NewWorkflowSavedEvent creates a new workflow saved event.
func NewWorkflowSavedEvent(workflowID, name string, steps int) WorkflowSavedEvent {
	return WorkflowSavedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowSaved, workflowID, ""),
		Name:      name,
		Steps:     steps,
	}
}

// WorkflowDeletedEvent is emitted when a workflow definition is removed.
type WorkflowDeletedEvent struct {
	BaseEvent
}

// NewWorkflowDeletedEvent creates a new workflow deleted event.
func NewWorkflowDeletedEvent(workflowID string) WorkflowDeletedEvent {
	return WorkflowDeletedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowDeleted, workflowID, ""),
	}
}
