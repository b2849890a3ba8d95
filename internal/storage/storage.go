// Package storage defines the run-record store. The relay keeps one row of
// operational metadata per chat run; conversation transcripts stay with
// the upstream provider.
package storage

import (
	"context"
	"time"
)

// RunRecord is the operational record of one chat run.
type RunRecord struct {
	ID        string
	RequestID string
	ThreadID  string
	AgentID   string
	// Status is "completed" or "error".
	Status    string
	ErrorKind string
	Duration  time.Duration
	CreatedAt time.Time
}

// RunStore persists run records.
type RunStore interface {
	RecordRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRunsByThread(ctx context.Context, threadID string) ([]*RunRecord, error)
	Close() error
}
