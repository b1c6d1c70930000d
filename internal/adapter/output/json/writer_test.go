package json_test

import (
	"context"
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juspay/yama-sub000/internal/adapter/output/json"
	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

func TestWriterWritesReport(t *testing.T) {
	dir := t.TempDir()
	writer := json.NewWriter(func() string { return "20260301T000000Z" })

	report := json.Report{
		OutputDir:  dir,
		Repository: "acme/widgets",
		PRID:       "42",
		Model:      "claude-sonnet-4-5",
		Result: review.Result{
			Violations: []domain.Violation{
				{
					Type:       domain.ViolationTypeInline,
					File:       "app/auth.go",
					LineNumber: 12,
					LineType:   domain.LineTypeAdded,
					Severity:   domain.SeverityCritical,
					Category:   "security",
					Issue:      "hardcoded secret",
					Message:    "move to env",
				},
			},
			Dedup: domain.DeduplicationResult{RemovedExact: 1, Degraded: true},
			Stats: review.RunStats{
				FilesReviewed:  2,
				BatchCount:     1,
				RawViolations:  3,
				FuzzyRelocated: 1,
				SeverityCounts: map[string]int{domain.SeverityCritical: 1},
				Duration:       1200 * time.Millisecond,
			},
		},
	}

	path, err := writer.Write(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, "review-pr42-20260301T000000Z.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, stdjson.Unmarshal(data, &decoded))

	assert.Equal(t, "acme/widgets", decoded["repository"])
	assert.Equal(t, "42", decoded["pr_id"])

	violations := decoded["violations"].([]interface{})
	require.Len(t, violations, 1)
	v := violations[0].(map[string]interface{})
	assert.Equal(t, "hardcoded secret", v["issue"])
	assert.EqualValues(t, 12, v["line_number"])

	dedup := decoded["dedup"].(map[string]interface{})
	assert.EqualValues(t, 1, dedup["removed_exact"])
	assert.Equal(t, true, dedup["degraded"])

	stats := decoded["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["raw_violations"])
	assert.EqualValues(t, 1200, stats["duration_ms"])
}

func TestWriterCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "out")
	writer := json.NewWriter(json.Timestamp)

	_, err := writer.Write(context.Background(), json.Report{OutputDir: dir, PRID: "1"})
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
