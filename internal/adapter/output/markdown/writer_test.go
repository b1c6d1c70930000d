package markdown_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juspay/yama-sub000/internal/adapter/output/markdown"
	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

func testReport(dir string) markdown.Report {
	return markdown.Report{
		OutputDir:  dir,
		Repository: "acme/widgets",
		PRID:       "42",
		Model:      "claude-sonnet-4-5",
		Result: review.Result{
			Violations: []domain.Violation{
				{
					Type:        domain.ViolationTypeInline,
					File:        "app/auth.go",
					CodeSnippet: `+const token = "x"`,
					LineNumber:  12,
					LineType:    domain.LineTypeAdded,
					Severity:    domain.SeverityCritical,
					Category:    "security",
					Issue:       "hardcoded secret",
					Message:     "move the token to the environment",
					Suggestion:  "use os.Getenv",
				},
				{
					Type:     domain.ViolationTypeGeneral,
					Severity: domain.SeverityMinor,
					Category: "docs",
					Issue:    "missing docs",
					Message:  "exported API undocumented",
				},
			},
			Dedup: domain.DeduplicationResult{RemovedExact: 2, RemovedSemanticIntraRun: 1},
			Stats: review.RunStats{
				FilesReviewed: 3,
				BatchCount:    2,
				FailedBatches: 0,
				Duration:      1500 * time.Millisecond,
			},
		},
	}
}

func TestWriterProducesDeterministicMarkdown(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writer := markdown.NewWriter(func() string {
		return "2026-03-01T00-00-00Z"
	})

	path, err := writer.Write(ctx, testReport(dir))
	if err != nil {
		t.Fatalf("writer returned error: %v", err)
	}

	if filepath.Base(path) != "acme-widgets_pr42_2026-03-01T00-00-00Z.md" {
		t.Fatalf("unexpected filename: %s", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"# Code Review Report",
		"- Repository: acme/widgets",
		"- Pull request: 42",
		"- Files reviewed: 3 in 2 batch(es), 0 failed",
		"Duplicates removed: 3",
		"### hardcoded secret (Critical)",
		"- File: app/auth.go:12 (ADDED)",
		"- Suggestion: use os.Getenv",
		"### missing docs (Minor)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestWriterNoViolations(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(func() string { return "ts" })

	report := testReport(dir)
	report.Result.Violations = nil
	report.Result.Dedup = domain.DeduplicationResult{}

	path, err := writer.Write(context.Background(), report)
	if err != nil {
		t.Fatalf("writer returned error: %v", err)
	}

	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "No violations reported.") {
		t.Fatalf("expected empty-run message, got:\n%s", content)
	}
	if strings.Contains(string(content), "## Violations") {
		t.Fatalf("unexpected violations section:\n%s", content)
	}
}

func TestWriterCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	writer := markdown.NewWriter(func() string { return "ts" })

	report := testReport(dir)
	if _, err := writer.Write(context.Background(), report); err != nil {
		t.Fatalf("writer returned error: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}
