package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/juspay/yama-sub000/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Metadata about each review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		pr_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		model TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		files_reviewed INTEGER NOT NULL DEFAULT 0,
		batch_count INTEGER NOT NULL DEFAULT 0,
		failed_batches INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	-- Final violations reported by each run
	CREATE TABLE IF NOT EXISTS violations (
		violation_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		type TEXT NOT NULL,
		file TEXT,
		line_number INTEGER NOT NULL DEFAULT 0,
		line_type TEXT,
		severity TEXT NOT NULL,
		category TEXT NOT NULL,
		issue TEXT NOT NULL,
		message TEXT NOT NULL,
		suggestion TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Per-stage deduplication counts for each run
	CREATE TABLE IF NOT EXISTS dedup_stats (
		run_id TEXT PRIMARY KEY,
		removed_exact INTEGER NOT NULL DEFAULT 0,
		removed_normalized INTEGER NOT NULL DEFAULT 0,
		removed_same_location INTEGER NOT NULL DEFAULT 0,
		removed_semantic_comments INTEGER NOT NULL DEFAULT 0,
		removed_semantic_intra_run INTEGER NOT NULL DEFAULT 0,
		degraded INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_violations_run ON violations(run_id);
	CREATE INDEX IF NOT EXISTS idx_violations_fingerprint ON violations(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_pr ON runs(pr_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new review run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, pr_id, timestamp, repository, base_ref, target_ref, model, config_hash, files_reviewed, batch_count, failed_batches, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.PRID,
		run.Timestamp.Unix(),
		run.Repository,
		run.BaseRef,
		run.TargetRef,
		run.Model,
		run.ConfigHash,
		run.FilesReviewed,
		run.BatchCount,
		run.FailedBatches,
		run.Duration.Milliseconds(),
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, pr_id, timestamp, repository, base_ref, target_ref, model, config_hash, files_reviewed, batch_count, failed_batches, duration_ms
		FROM runs
		WHERE run_id = ?
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, pr_id, timestamp, repository, base_ref, target_ref, model, config_hash, files_reviewed, batch_count, failed_batches, duration_ms
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var run store.Run
	var timestamp, durationMs int64

	if err := row.Scan(
		&run.RunID,
		&run.PRID,
		&timestamp,
		&run.Repository,
		&run.BaseRef,
		&run.TargetRef,
		&run.Model,
		&run.ConfigHash,
		&run.FilesReviewed,
		&run.BatchCount,
		&run.FailedBatches,
		&durationMs,
	); err != nil {
		return store.Run{}, err
	}

	run.Timestamp = time.Unix(timestamp, 0)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// SaveViolations stores multiple violations in a single transaction.
func (s *Store) SaveViolations(ctx context.Context, violations []store.ViolationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO violations (violation_id, run_id, fingerprint, type, file, line_number, line_type, severity, category, issue, message, suggestion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range violations {
		if _, err := stmt.ExecContext(ctx,
			v.ViolationID,
			v.RunID,
			v.Fingerprint,
			v.Type,
			v.File,
			v.LineNumber,
			v.LineType,
			v.Severity,
			v.Category,
			v.Issue,
			v.Message,
			v.Suggestion,
		); err != nil {
			return fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetViolationsByRun retrieves all violations for a given run in insert order.
func (s *Store) GetViolationsByRun(ctx context.Context, runID string) ([]store.ViolationRecord, error) {
	query := `
		SELECT violation_id, run_id, fingerprint, type, file, line_number, line_type, severity, category, issue, message, suggestion
		FROM violations
		WHERE run_id = ?
		ORDER BY violation_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get violations by run: %w", err)
	}
	defer rows.Close()

	var violations []store.ViolationRecord
	for rows.Next() {
		var v store.ViolationRecord

		if err := rows.Scan(
			&v.ViolationID,
			&v.RunID,
			&v.Fingerprint,
			&v.Type,
			&v.File,
			&v.LineNumber,
			&v.LineType,
			&v.Severity,
			&v.Category,
			&v.Issue,
			&v.Message,
			&v.Suggestion,
		); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}

		violations = append(violations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating violations: %w", err)
	}

	return violations, nil
}

// SaveDedupStats stores the deduplication outcome for a run. Saving twice
// for the same run replaces the earlier row.
func (s *Store) SaveDedupStats(ctx context.Context, stats store.DedupStats) error {
	query := `
		INSERT INTO dedup_stats (run_id, removed_exact, removed_normalized, removed_same_location, removed_semantic_comments, removed_semantic_intra_run, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			removed_exact = excluded.removed_exact,
			removed_normalized = excluded.removed_normalized,
			removed_same_location = excluded.removed_same_location,
			removed_semantic_comments = excluded.removed_semantic_comments,
			removed_semantic_intra_run = excluded.removed_semantic_intra_run,
			degraded = excluded.degraded
	`

	degraded := 0
	if stats.Degraded {
		degraded = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		stats.RunID,
		stats.RemovedExact,
		stats.RemovedNormalized,
		stats.RemovedSameLocation,
		stats.RemovedSemanticComments,
		stats.RemovedSemanticIntraRun,
		degraded,
	)
	if err != nil {
		return fmt.Errorf("failed to save dedup stats: %w", err)
	}

	return nil
}

// GetDedupStats retrieves the deduplication outcome for a run.
func (s *Store) GetDedupStats(ctx context.Context, runID string) (store.DedupStats, error) {
	query := `
		SELECT run_id, removed_exact, removed_normalized, removed_same_location, removed_semantic_comments, removed_semantic_intra_run, degraded
		FROM dedup_stats
		WHERE run_id = ?
	`

	var stats store.DedupStats
	var degraded int

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&stats.RunID,
		&stats.RemovedExact,
		&stats.RemovedNormalized,
		&stats.RemovedSameLocation,
		&stats.RemovedSemanticComments,
		&stats.RemovedSemanticIntraRun,
		&degraded,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return store.DedupStats{}, fmt.Errorf("dedup stats not found: %s", runID)
		}
		return store.DedupStats{}, fmt.Errorf("failed to get dedup stats: %w", err)
	}

	stats.Degraded = degraded == 1
	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
