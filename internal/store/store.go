package store

import (
	"context"
	"time"
)

// Store defines the persistence layer for review run history.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Violation persistence
	SaveViolations(ctx context.Context, violations []ViolationRecord) error
	GetViolationsByRun(ctx context.Context, runID string) ([]ViolationRecord, error)

	// Deduplication outcome per run
	SaveDedupStats(ctx context.Context, stats DedupStats) error
	GetDedupStats(ctx context.Context, runID string) (DedupStats, error)

	// Utility
	Close() error
}

// Run represents a single review execution.
type Run struct {
	RunID      string
	PRID       string
	Timestamp  time.Time
	Repository string
	BaseRef    string
	TargetRef  string
	Model      string
	ConfigHash string

	FilesReviewed int
	BatchCount    int
	FailedBatches int
	Duration      time.Duration
}

// ViolationRecord is a final (deduplicated, located) violation from a run.
type ViolationRecord struct {
	ViolationID string
	RunID       string
	Fingerprint string
	Type        string
	File        string
	LineNumber  int
	LineType    string
	Severity    string
	Category    string
	Issue       string
	Message     string
	Suggestion  string
}

// DedupStats records what each deduplication stage removed during a run.
type DedupStats struct {
	RunID                   string
	RemovedExact            int
	RemovedNormalized       int
	RemovedSameLocation     int
	RemovedSemanticComments int
	RemovedSemanticIntraRun int
	Degraded                bool
}
