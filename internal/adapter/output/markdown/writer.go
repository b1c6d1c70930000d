package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/juspay/yama-sub000/internal/usecase/review"
)

type clock func() string

// Report is a review run plus the metadata the report header needs.
type Report struct {
	OutputDir  string
	Repository string
	PRID       string
	Model      string
	Result     review.Result
}

// Writer renders review runs into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown report to disk and returns its path.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	if err := os.MkdirAll(report.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_pr%s_%s.md",
		sanitise(report.Repository),
		sanitise(report.PRID),
		w.now(),
	)
	path := filepath.Join(report.OutputDir, filename)

	content := buildContent(report)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(report Report) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	stats := report.Result.Stats

	builder.WriteString("# Code Review Report\n\n")
	builder.WriteString(fmt.Sprintf("- Repository: %s\n", report.Repository))
	builder.WriteString(fmt.Sprintf("- Pull request: %s\n", report.PRID))
	builder.WriteString(fmt.Sprintf("- Model: %s\n", report.Model))
	builder.WriteString(fmt.Sprintf("- Files reviewed: %d in %d batch(es), %d failed\n",
		stats.FilesReviewed, stats.BatchCount, stats.FailedBatches))
	builder.WriteString(fmt.Sprintf("- Duration: %s\n\n", stats.Duration.Round(time.Millisecond)))

	dedup := report.Result.Dedup
	if removed := dedup.RemovedTotal(); removed > 0 {
		builder.WriteString(fmt.Sprintf("Duplicates removed: %d (exact %d, normalized %d, same-location %d, semantic %d)\n\n",
			removed, dedup.RemovedExact, dedup.RemovedNormalized, dedup.RemovedSameLocation,
			dedup.RemovedSemanticComments+dedup.RemovedSemanticIntraRun))
	}
	if dedup.Degraded {
		builder.WriteString("Semantic duplicate detection was unavailable for this run.\n\n")
	}

	violations := report.Result.Violations
	if len(violations) == 0 {
		builder.WriteString("No violations reported.\n")
		return builder.String()
	}

	builder.WriteString("## Violations\n\n")
	for _, v := range violations {
		builder.WriteString(fmt.Sprintf("### %s (%s)\n", v.Issue, caser.String(strings.ToLower(v.Severity))))
		if v.Inline() && v.LineNumber > 0 {
			builder.WriteString(fmt.Sprintf("- File: %s:%d (%s)\n", v.File, v.LineNumber, v.LineType))
		} else if v.File != "" {
			builder.WriteString(fmt.Sprintf("- File: %s\n", v.File))
		}
		builder.WriteString(fmt.Sprintf("- Category: %s\n", v.Category))
		builder.WriteString(fmt.Sprintf("- Message: %s\n", v.Message))
		if v.Suggestion != "" {
			builder.WriteString(fmt.Sprintf("- Suggestion: %s\n", v.Suggestion))
		}
		if v.CodeSnippet != "" {
			builder.WriteString(fmt.Sprintf("\n```\n%s\n```\n", v.CodeSnippet))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
