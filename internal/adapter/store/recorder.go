// Package store glues the review pipeline to the persistence layer without
// the usecase packages depending on storage types.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/juspay/yama-sub000/internal/store"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

// RunInfo carries the run metadata not present in the pipeline result.
type RunInfo struct {
	PRID       string
	Repository string
	BaseRef    string
	TargetRef  string
	Model      string
	ConfigHash string
}

// Recorder persists completed review runs.
type Recorder struct {
	store store.Store
	now   func() time.Time
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// Record persists the run, its final violations and the deduplication
// outcome. Returns the generated run ID.
func (r *Recorder) Record(ctx context.Context, info RunInfo, result review.Result) (string, error) {
	timestamp := r.now()
	runID := store.GenerateRunID(timestamp, info.PRID)

	run := store.Run{
		RunID:         runID,
		PRID:          info.PRID,
		Timestamp:     timestamp,
		Repository:    info.Repository,
		BaseRef:       info.BaseRef,
		TargetRef:     info.TargetRef,
		Model:         info.Model,
		ConfigHash:    info.ConfigHash,
		FilesReviewed: result.Stats.FilesReviewed,
		BatchCount:    result.Stats.BatchCount,
		FailedBatches: result.Stats.FailedBatches,
		Duration:      result.Stats.Duration,
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	records := make([]store.ViolationRecord, 0, len(result.Violations))
	for i, v := range result.Violations {
		records = append(records, store.ViolationRecord{
			ViolationID: store.GenerateViolationID(runID, i),
			RunID:       runID,
			Fingerprint: v.Fingerprint(),
			Type:        v.Type,
			File:        v.File,
			LineNumber:  v.LineNumber,
			LineType:    v.LineType,
			Severity:    v.Severity,
			Category:    v.Category,
			Issue:       v.Issue,
			Message:     v.Message,
			Suggestion:  v.Suggestion,
		})
	}
	if len(records) > 0 {
		if err := r.store.SaveViolations(ctx, records); err != nil {
			return "", fmt.Errorf("record violations: %w", err)
		}
	}

	stats := store.DedupStats{
		RunID:                   runID,
		RemovedExact:            result.Dedup.RemovedExact,
		RemovedNormalized:       result.Dedup.RemovedNormalized,
		RemovedSameLocation:     result.Dedup.RemovedSameLocation,
		RemovedSemanticComments: result.Dedup.RemovedSemanticComments,
		RemovedSemanticIntraRun: result.Dedup.RemovedSemanticIntraRun,
		Degraded:                result.Dedup.Degraded,
	}
	if err := r.store.SaveDedupStats(ctx, stats); err != nil {
		return "", fmt.Errorf("record dedup stats: %w", err)
	}

	return runID, nil
}
