package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

// Report is the machine-readable counterpart of the markdown report.
type Report struct {
	OutputDir  string
	Repository string
	PRID       string
	Model      string
	Result     review.Result
}

type reportPayload struct {
	Repository string             `json:"repository"`
	PRID       string             `json:"pr_id"`
	Model      string             `json:"model"`
	Violations []domain.Violation `json:"violations"`
	Dedup      dedupPayload       `json:"dedup"`
	Stats      statsPayload       `json:"stats"`
}

type dedupPayload struct {
	RemovedExact            int  `json:"removed_exact"`
	RemovedNormalized       int  `json:"removed_normalized"`
	RemovedSameLocation     int  `json:"removed_same_location"`
	RemovedSemanticComments int  `json:"removed_semantic_comments"`
	RemovedSemanticIntraRun int  `json:"removed_semantic_intra_run"`
	Degraded                bool `json:"degraded"`
}

type statsPayload struct {
	FilesReviewed      int            `json:"files_reviewed"`
	BatchCount         int            `json:"batch_count"`
	FailedBatches      int            `json:"failed_batches"`
	RawViolations      int            `json:"raw_violations"`
	DroppedUnlocatable int            `json:"dropped_unlocatable"`
	FuzzyRelocated     int            `json:"fuzzy_relocated"`
	SeverityCounts     map[string]int `json:"severity_counts,omitempty"`
	CategoryCounts     map[string]int `json:"category_counts,omitempty"`
	DurationMs         int64          `json:"duration_ms"`
}

// Writer persists review runs to disk as JSON files.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer with a timestamp supplier.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists the run result as a JSON file and returns its path.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	if err := os.MkdirAll(report.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(report.OutputDir, fmt.Sprintf("review-pr%s-%s.json", report.PRID, w.now()))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	stats := report.Result.Stats
	payload := reportPayload{
		Repository: report.Repository,
		PRID:       report.PRID,
		Model:      report.Model,
		Violations: report.Result.Violations,
		Dedup: dedupPayload{
			RemovedExact:            report.Result.Dedup.RemovedExact,
			RemovedNormalized:       report.Result.Dedup.RemovedNormalized,
			RemovedSameLocation:     report.Result.Dedup.RemovedSameLocation,
			RemovedSemanticComments: report.Result.Dedup.RemovedSemanticComments,
			RemovedSemanticIntraRun: report.Result.Dedup.RemovedSemanticIntraRun,
			Degraded:                report.Result.Dedup.Degraded,
		},
		Stats: statsPayload{
			FilesReviewed:      stats.FilesReviewed,
			BatchCount:         stats.BatchCount,
			FailedBatches:      stats.FailedBatches,
			RawViolations:      stats.RawViolations,
			DroppedUnlocatable: stats.DroppedUnlocatable,
			FuzzyRelocated:     stats.FuzzyRelocated,
			SeverityCounts:     stats.SeverityCounts,
			CategoryCounts:     stats.CategoryCounts,
			DurationMs:         stats.Duration.Milliseconds(),
		},
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode report to json: %w", err)
	}

	return filePath, nil
}

// Timestamp is the default now supplier, filename-safe UTC.
func Timestamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}
