package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"watchmarket/models"
)

func newTestRunStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := NewRunStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunStoreLifecycle(t *testing.T) {
	s := newTestRunStore(t)
	ctx := context.Background()

	run := &models.CollectionRun{
		Source:    models.SourceMarketplaceA,
		StartedAt: time.Now().UTC(),
		Status:    models.RunStatusRunning,
	}
	id, err := s.CreateRun(ctx, run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero run id")
	}
	run.ID = id

	if err := s.Log(ctx, id, models.LogLevelWarn, "card missing id"); err != nil {
		t.Fatalf("log: %v", err)
	}

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	run.ListingsFound = 42
	run.ListingsCreated = 40
	run.DuplicateSkips = 2
	if err := s.UpdateRun(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != models.RunStatusCompleted {
		t.Errorf("wrong status %s", got.Status)
	}
	if got.ListingsFound != 42 || got.ListingsCreated != 40 || got.DuplicateSkips != 2 {
		t.Errorf("wrong counters %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("missing finish time")
	}
}

func TestRunStoreLastRunTime(t *testing.T) {
	s := newTestRunStore(t)
	ctx := context.Background()

	last, err := s.LastRunTime(ctx, models.SourceMarketplaceB)
	if err != nil {
		t.Fatalf("last run time: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("expected zero time for unseen source, got %v", last)
	}

	started := time.Now().UTC().Truncate(time.Second)
	_, err = s.CreateRun(ctx, &models.CollectionRun{
		Source:    models.SourceMarketplaceB,
		StartedAt: started,
		Status:    models.RunStatusRunning,
	})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	last, err = s.LastRunTime(ctx, models.SourceMarketplaceB)
	if err != nil {
		t.Fatalf("last run time: %v", err)
	}
	if !last.Equal(started) {
		t.Errorf("expected %v, got %v", started, last)
	}
}
