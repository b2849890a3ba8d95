// Package sqlite is the SQLite implementation of the run-record store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/graphpilot/relay/internal/storage"
)

// Store persists run records in SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.RunStore = (*Store)(nil)

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			agent_id TEXT,
			status TEXT NOT NULL,
			error_kind TEXT,
			duration_ns INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_thread ON runs(thread_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun inserts one run record.
func (s *Store) RecordRun(ctx context.Context, rec *storage.RunRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, request_id, thread_id, agent_id, status, error_kind, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, rec.ThreadID, rec.AgentID, rec.Status, rec.ErrorKind,
		rec.Duration.Nanoseconds(), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// GetRun fetches one run record by id.
func (s *Store) GetRun(ctx context.Context, id string) (*storage.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request_id, thread_id, agent_id, status, error_kind, duration_ns, created_at
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRunsByThread lists every run recorded against a thread, newest
// first.
func (s *Store) ListRunsByThread(ctx context.Context, threadID string) ([]*storage.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, thread_id, agent_id, status, error_kind, duration_ns, created_at
		 FROM runs WHERE thread_id = ? ORDER BY created_at DESC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*storage.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*storage.RunRecord, error) {
	var rec storage.RunRecord
	var durationNs int64
	err := row.Scan(&rec.ID, &rec.RequestID, &rec.ThreadID, &rec.AgentID,
		&rec.Status, &rec.ErrorKind, &durationNs, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}
	rec.Duration = time.Duration(durationNs)
	return &rec, nil
}
