package core

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusError     RunStatus = "error"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsValid reports whether the status is a known variant.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusCompleted, RunStatusError, RunStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusError, RunStatusCancelled:
		return true
	}
	return false
}

// Run is one execution instance of a workflow. The engine only bookkeeps:
// the caller supplies step outputs and drives every transition.
type Run struct {
	ID             string            `json:"id"`
	WorkflowID     string            `json:"workflow_id"`
	Status         RunStatus         `json:"status"`
	CurrentStep    string            `json:"current_step,omitempty"`
	CompletedSteps []string          `json:"completed_steps"`
	StepOutputs    map[string]string `json:"step_outputs"`
	Prompt         string            `json:"prompt,omitempty"`
	Error          string            `json:"error,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
}

// NewRunID allocates a short unique run token (8 hex chars of a UUID).
func NewRunID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:4])
}

// NewRun creates a running instance positioned at the workflow entry point.
func NewRun(workflowID, entryPoint, prompt string) *Run {
	return &Run{
		ID:             NewRunID(),
		WorkflowID:     workflowID,
		Status:         RunStatusRunning,
		CurrentStep:    entryPoint,
		CompletedSteps: make([]string, 0),
		StepOutputs:    make(map[string]string),
		Prompt:         prompt,
		StartedAt:      time.Now(),
	}
}

// IsTerminal reports whether the run has finished.
func (r *Run) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// RecordStep stores the output produced for the current step and marks it
// completed. No-op when the run is terminal or not positioned on a step.
func (r *Run) RecordStep(output string) {
	if r.Status.IsTerminal() || r.CurrentStep == "" {
		return
	}
	if r.StepOutputs == nil {
		r.StepOutputs = make(map[string]string)
	}
	r.StepOutputs[r.CurrentStep] = output
	r.CompletedSteps = append(r.CompletedSteps, r.CurrentStep)
}

// Finish moves the run into a terminal status. It fails if the run is
// already terminal or if the target status is not terminal. CurrentStep is
// left untouched so an errored run still shows where it stopped; the
// default-advance completion path clears it separately.
func (r *Run) Finish(status RunStatus, errMsg string) error {
	if r.Status.IsTerminal() {
		return ErrState(CodeRunTerminal,
			fmt.Sprintf("run %s is already %s", r.ID, r.Status))
	}
	if !status.IsTerminal() {
		return ErrValidation(CodeInvalidStatus,
			fmt.Sprintf("%q is not a terminal status", status))
	}
	r.Status = status
	r.Error = errMsg
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	c := *r
	c.CompletedSteps = append([]string(nil), r.CompletedSteps...)
	if r.StepOutputs != nil {
		c.StepOutputs = make(map[string]string, len(r.StepOutputs))
		for k, v := range r.StepOutputs {
			c.StepOutputs[k] = v
		}
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
