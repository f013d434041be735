package events

// Event type constants for run lifecycle events.
const (
	TypeRunStarted   = "run_started"
	TypeRunAdvanced  = "run_advanced"
	TypeRunCompleted = "run_completed"
)

// RunStartedEvent is emitted when a run is created and positioned on the
// workflow's entry step.
type RunStartedEvent struct {
	BaseEvent
	EntryStep string `json:"entry_step,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// NewRunStartedEvent creates a new run started event.
func NewRunStartedEvent(workflowID, runID, entryStep, prompt string) RunStartedEvent {
	return RunStartedEvent{
		BaseEvent: NewBaseEvent(TypeRunStarted, workflowID, runID),
		EntryStep: entryStep,
		Prompt:    prompt,
	}
}

// RunAdvancedEvent is emitted when a run records a step result and moves to
// its next position. CurrentStep is empty when the graph is exhausted.
type RunAdvancedEvent struct {
	BaseEvent
	CompletedStep string `json:"completed_step"`
	CurrentStep   string `json:"current_step,omitempty"`
}

// NewRunAdvancedEvent creates a new run advanced event.
func NewRunAdvancedEvent(workflowID, runID, completedStep, currentStep string) RunAdvancedEvent {
	return RunAdvancedEvent{
		BaseEvent:     NewBaseEvent(TypeRunAdvanced, workflowID, runID),
		CompletedStep: completedStep,
		CurrentStep:   currentStep,
	}
}

// RunCompletedEvent is emitted when a run reaches a terminal status.
type RunCompletedEvent struct {
	BaseEvent
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewRunCompletedEvent creates a new run completed event.
func NewRunCompletedEvent(workflowID, runID, status, errMsg string) RunCompletedEvent {
	return RunCompletedEvent{
		BaseEvent: NewBaseEvent(TypeRunCompleted, workflowID, runID),
		Status:    status,
		Error:     errMsg,
	}
}
