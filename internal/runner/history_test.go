package runner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/logging"
	"github.com/baton-ai/baton/internal/store"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	h, err := NewHistoryStore(DefaultHistoryPath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func archivedRun(id, workflowID string, status core.RunStatus, startedAt time.Time) *core.Run {
	finished := startedAt.Add(time.Minute)
	return &core.Run{
		ID:             id,
		WorkflowID:     workflowID,
		Status:         status,
		CompletedSteps: []string{"plan", "implement"},
		StepOutputs:    map[string]string{"plan": "done", "implement": "shipped"},
		Prompt:         "build the thing",
		StartedAt:      startedAt,
		FinishedAt:     &finished,
	}
}

func TestDefaultHistoryPath(t *testing.T) {
	got := DefaultHistoryPath("/home/x/.claude/workflows")
	want := filepath.Join("/home/x/.claude/workflows", ".baton", "history.db")
	if got != want {
		t.Errorf("DefaultHistoryPath = %q, want %q", got, want)
	}
}

func TestHistoryStore_ArchiveRoundTrip(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	run := archivedRun("r-1", "feature-dev", core.RunStatusError, time.Now().Add(-time.Hour))
	run.Error = "agent crashed"
	if err := h.Archive(ctx, run); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	runs, err := h.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Recent returned %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != "r-1" || got.WorkflowID != "feature-dev" {
		t.Errorf("identity = %s/%s", got.ID, got.WorkflowID)
	}
	if got.Status != core.RunStatusError || got.Error != "agent crashed" {
		t.Errorf("status = %s error = %q", got.Status, got.Error)
	}
	if got.Prompt != "build the thing" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if len(got.CompletedSteps) != 2 || got.CompletedSteps[1] != "implement" {
		t.Errorf("completed steps = %v", got.CompletedSteps)
	}
	if got.StepOutputs["implement"] != "shipped" {
		t.Errorf("step outputs = %v", got.StepOutputs)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(*run.FinishedAt) {
		t.Errorf("finished_at = %v, want %v", got.FinishedAt, run.FinishedAt)
	}
}

func TestHistoryStore_Recent_FilterAndLimit(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixtures := []*core.Run{
		archivedRun("r-old", "feature-dev", core.RunStatusCompleted, base),
		archivedRun("r-mid", "code-review", core.RunStatusCompleted, base.Add(time.Hour)),
		archivedRun("r-new", "feature-dev", core.RunStatusCancelled, base.Add(2*time.Hour)),
	}
	for _, run := range fixtures {
		if err := h.Archive(ctx, run); err != nil {
			t.Fatalf("Archive %s failed: %v", run.ID, err)
		}
	}

	all, err := h.Recent(ctx, 0, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent returned %d runs, want 3", len(all))
	}
	if all[0].ID != "r-new" || all[2].ID != "r-old" {
		t.Errorf("order = [%s %s %s], want newest first", all[0].ID, all[1].ID, all[2].ID)
	}

	feature, err := h.Recent(ctx, 10, "feature-dev")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(feature) != 2 || feature[0].ID != "r-new" || feature[1].ID != "r-old" {
		t.Errorf("filtered = %+v", feature)
	}

	limited, err := h.Recent(ctx, 1, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "r-new" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestHistoryStore_Archive_Upsert(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	run := archivedRun("r-dup", "feature-dev", core.RunStatusCompleted, time.Now())
	if err := h.Archive(ctx, run); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	run.Status = core.RunStatusError
	run.Error = "late failure"
	if err := h.Archive(ctx, run); err != nil {
		t.Fatalf("re-Archive failed: %v", err)
	}

	runs, err := h.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Recent returned %d runs, want 1 after upsert", len(runs))
	}
	if runs[0].Status != core.RunStatusError || runs[0].Error != "late failure" {
		t.Errorf("upserted row = %+v", runs[0])
	}
}

func TestHistoryStore_ReopenKeepsData(t *testing.T) {
	dbPath := DefaultHistoryPath(t.TempDir())
	ctx := context.Background()

	h, err := NewHistoryStore(dbPath)
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	if err := h.Archive(ctx, archivedRun("r-keep", "code-review", core.RunStatusCompleted, time.Now())); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	h, err = NewHistoryStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer h.Close()

	runs, err := h.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "r-keep" {
		t.Errorf("reopened store lost data: %+v", runs)
	}
}

func TestRunner_ArchivesTerminalRuns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workflows")
	st, err := store.New(dir, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	h := newTestHistory(t)
	r := New(st, nil, h, logging.NewNop())

	// A run completed through the graph is archived.
	run, err := r.Execute("feature-dev", "archive me")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, output := range []string{"planned", "built", "tested", "reviewed"} {
		if run, err = r.Advance(run.ID, output, ""); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
	}
	if run.Status != core.RunStatusCompleted {
		t.Fatalf("status = %s, want completed", run.Status)
	}

	// A force-cancelled run is archived too.
	other, err := r.Execute("code-review", "")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := r.Complete(other.ID, core.RunStatusCancelled, ""); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	runs, err := h.Recent(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("archived %d runs, want 2", len(runs))
	}
	byID := map[string]*core.Run{runs[0].ID: runs[0], runs[1].ID: runs[1]}
	archived, ok := byID[run.ID]
	if !ok {
		t.Fatalf("completed run %s not archived", run.ID)
	}
	if archived.Status != core.RunStatusCompleted || archived.StepOutputs["test"] != "tested" {
		t.Errorf("archived run = %+v", archived)
	}
	if cancelled, ok := byID[other.ID]; !ok || cancelled.Status != core.RunStatusCancelled {
		t.Errorf("cancelled run missing or wrong: %+v", cancelled)
	}
}
