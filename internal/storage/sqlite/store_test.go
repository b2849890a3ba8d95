package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/graphpilot/relay/internal/storage"
)

func TestStore_RecordAndGetRun(t *testing.T) {
	// Use in-memory SQLite with shared cache for testing
	store, err := New("file:runs1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	rec := &storage.RunRecord{
		ID:        "run-rec-1",
		RequestID: "req-1",
		ThreadID:  "thread-1",
		AgentID:   "agent-1",
		Status:    "completed",
		Duration:  1500 * time.Millisecond,
	}

	if err := store.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, err := store.GetRun(context.Background(), "run-rec-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.ThreadID != rec.ThreadID {
		t.Errorf("ThreadID = %v, want %v", got.ThreadID, rec.ThreadID)
	}
	if got.Status != "completed" {
		t.Errorf("Status = %v, want completed", got.Status)
	}
	if got.Duration != rec.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, rec.Duration)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want stamped")
	}
}

func TestStore_ListRunsByThread(t *testing.T) {
	store, err := New("file:runs2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	base := time.Now().UTC().Add(-time.Hour)
	for i, rec := range []*storage.RunRecord{
		{ID: "r1", RequestID: "q1", ThreadID: "thread-1", Status: "completed"},
		{ID: "r2", RequestID: "q2", ThreadID: "thread-1", Status: "error", ErrorKind: "upstream"},
		{ID: "r3", RequestID: "q3", ThreadID: "thread-2", Status: "completed"},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.RecordRun(context.Background(), rec); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", rec.ID, err)
		}
	}

	runs, err := store.ListRunsByThread(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("ListRunsByThread() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(runs))
	}
	// Newest first
	if runs[0].ID != "r2" || runs[1].ID != "r1" {
		t.Errorf("order = %s, %s, want r2, r1", runs[0].ID, runs[1].ID)
	}
	if runs[0].ErrorKind != "upstream" {
		t.Errorf("ErrorKind = %q, want upstream", runs[0].ErrorKind)
	}
}

func TestStore_GetRunMissing(t *testing.T) {
	store, err := New("file:runs3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if _, err := store.GetRun(context.Background(), "nope"); err == nil {
		t.Fatal("GetRun() error = nil, want not-found error")
	}
}
