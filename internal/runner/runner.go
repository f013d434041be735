// Package runner drives workflow runs as an externally driven state
// machine. The engine never invokes an agent itself: callers report step
// outputs through Advance and the runner bookkeeps position, status and
// history. Live runs are held in memory only; terminal runs are archived
// to the optional SQLite history store.
package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/events"
	"github.com/baton-ai/baton/internal/logging"
	"github.com/baton-ai/baton/internal/store"
)

// runEntry pairs a run with its own mutex so concurrent advances of
// different runs never contend on a shared lock.
type runEntry struct {
	mu  sync.Mutex
	run *core.Run
}

// Runner owns the in-memory run registry.
type Runner struct {
	store   *store.Store
	bus     *events.EventBus
	history *HistoryStore
	log     *logging.Logger

	mu   sync.RWMutex
	runs map[string]*runEntry
}

// New creates a runner backed by the given workflow store. The bus and
// history store may be nil; events and archiving are then skipped.
func New(st *store.Store, bus *events.EventBus, history *HistoryStore, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		store:   st,
		bus:     bus,
		history: history,
		log:     log,
		runs:    make(map[string]*runEntry),
	}
}

// Execute starts a new run of the given workflow, positioned on its entry
// point. The prompt is the verbal task the caller wants carried through
// the workflow; it is stored on the run for prompt compilation and export.
func (r *Runner) Execute(workflowID, prompt string) (*core.Run, error) {
	wf, err := r.store.Get(workflowID)
	if err != nil {
		return nil, err
	}

	run := core.NewRun(wf.ID, wf.EntryPoint, prompt)
	r.mu.Lock()
	r.runs[run.ID] = &runEntry{run: run}
	r.mu.Unlock()

	r.log.WithWorkflow(wf.ID).Info("run started",
		"run_id", run.ID, "entry_step", wf.EntryPoint)
	r.publish(events.NewRunStartedEvent(wf.ID, run.ID, wf.EntryPoint, prompt))
	return run.Clone(), nil
}

// Advance records the output of the run's current step and moves the run
// forward. A non-empty nextStep overrides routing unconditionally: the
// caller may branch to any step id, including ones the graph does not
// declare. With no override the first declared next_steps edge is taken;
// when the current step has none (or no longer resolves in the stored
// workflow) the run completes.
func (r *Runner) Advance(runID, output, nextStep string) (*core.Run, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	run := entry.run
	if run.Status != core.RunStatusRunning {
		return nil, core.ErrState(core.CodeRunNotRunning,
			fmt.Sprintf("run %s is %s and cannot advance", runID, run.Status))
	}

	completed := run.CurrentStep
	run.RecordStep(output)

	next := nextStep
	if next == "" {
		next = r.defaultNext(run.WorkflowID, completed)
	}
	if next != "" {
		run.CurrentStep = next
		r.log.WithWorkflow(run.WorkflowID).WithRun(run.ID).Debug("run advanced",
			"completed_step", completed, "current_step", next)
		r.publish(events.NewRunAdvancedEvent(run.WorkflowID, run.ID, completed, next))
		return run.Clone(), nil
	}

	// Graph exhausted: the run finished on its own terms.
	if err := run.Finish(core.RunStatusCompleted, ""); err != nil {
		return nil, err
	}
	run.CurrentStep = ""
	r.log.WithWorkflow(run.WorkflowID).WithRun(run.ID).Info("run completed",
		"completed_step", completed, "steps", len(run.CompletedSteps))
	r.publish(events.NewRunAdvancedEvent(run.WorkflowID, run.ID, completed, ""))
	r.publish(events.NewRunCompletedEvent(run.WorkflowID, run.ID, string(run.Status), ""))
	r.archive(run)
	return run.Clone(), nil
}

// Complete force-sets a terminal status regardless of graph position. It
// is the only way a run becomes cancelled. The current step is left in
// place so an errored or cancelled run still shows where it stopped.
func (r *Runner) Complete(runID string, status core.RunStatus, errMsg string) (*core.Run, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	run := entry.run
	if err := run.Finish(status, errMsg); err != nil {
		return nil, err
	}
	r.log.WithWorkflow(run.WorkflowID).WithRun(run.ID).Info("run finished",
		"status", run.Status, "error", errMsg)
	r.publish(events.NewRunCompletedEvent(run.WorkflowID, run.ID, string(run.Status), errMsg))
	r.archive(run)
	return run.Clone(), nil
}

// Get returns a snapshot of a run.
func (r *Runner) Get(runID string) (*core.Run, error) {
	entry, err := r.entry(runID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.run.Clone(), nil
}

// List returns snapshots of all runs, newest first. A non-empty
// workflowID restricts the result to runs of that workflow.
func (r *Runner) List(workflowID string) []*core.Run {
	r.mu.RLock()
	entries := make([]*runEntry, 0, len(r.runs))
	for _, e := range r.runs {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	runs := make([]*core.Run, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if workflowID == "" || e.run.WorkflowID == workflowID {
			runs = append(runs, e.run.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs
}

// NextSteps evaluates the current step's outgoing edges against a context
// map and returns the step ids whose conditions pass. Callers use it to
// decide which explicit nextStep to hand Advance.
func (r *Runner) NextSteps(workflowID, currentStep string, context map[string]interface{}) ([]string, error) {
	wf, err := r.store.Get(workflowID)
	if err != nil {
		return nil, err
	}
	step, ok := wf.Step(currentStep)
	if !ok {
		return nil, core.ErrNotFound("step", currentStep)
	}
	candidates := make([]string, 0, len(step.NextSteps))
	for _, next := range step.NextSteps {
		if step.Conditions[next].Evaluate(context) {
			candidates = append(candidates, next)
		}
	}
	return candidates, nil
}

// defaultNext returns the first declared successor of the given step, or
// "" when the workflow or step is gone or the step has no edges.
func (r *Runner) defaultNext(workflowID, stepID string) string {
	wf, err := r.store.Get(workflowID)
	if err != nil {
		return ""
	}
	step, ok := wf.Step(stepID)
	if !ok || len(step.NextSteps) == 0 {
		return ""
	}
	return step.NextSteps[0]
}

func (r *Runner) entry(runID string) (*runEntry, error) {
	r.mu.RLock()
	e, ok := r.runs[runID]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrNotFound("run", runID)
	}
	return e, nil
}

func (r *Runner) publish(evt events.Event) {
	if r.bus != nil {
		r.bus.Publish(evt)
	}
}

// archive writes a terminal run to the history store. Failures are logged
// and swallowed: losing an archive row must not fail the transition the
// caller already observed.
func (r *Runner) archive(run *core.Run) {
	if r.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.history.Archive(ctx, run); err != nil {
		r.log.Warn("archiving run failed", "run_id", run.ID, "error", err)
	}
}
