package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

func inlineViolation(file string, line int, lineType, severity string) domain.Violation {
	return domain.Violation{
		Type:       domain.ViolationTypeInline,
		File:       file,
		LineNumber: line,
		LineType:   lineType,
		Severity:   severity,
		Category:   "security",
		Issue:      "hardcoded secret",
		Message:    "credentials must come from the environment",
	}
}

func TestBuildReviewComments(t *testing.T) {
	violations := []domain.Violation{
		inlineViolation("app/auth.go", 12, domain.LineTypeAdded, domain.SeverityCritical),
		inlineViolation("app/auth.go", 4, domain.LineTypeRemoved, domain.SeverityMinor),
		{Type: domain.ViolationTypeGeneral, Severity: domain.SeverityMajor, Issue: "missing tests", Message: "no coverage"},
		// inline but never located: stays out of the comment list
		{Type: domain.ViolationTypeInline, File: "app/auth.go", Severity: domain.SeverityMinor, Issue: "style", Message: "m"},
	}

	comments := BuildReviewComments(violations)

	require.Len(t, comments, 2)
	assert.Equal(t, "app/auth.go", comments[0].Path)
	assert.Equal(t, 12, comments[0].Line)
	assert.Equal(t, SideRight, comments[0].Side)
	assert.Equal(t, SideLeft, comments[1].Side)
	assert.Contains(t, comments[0].Body, "CRITICAL")
	assert.Contains(t, comments[0].Body, review.ToolSignature)
}

func TestFormatCommentBody(t *testing.T) {
	v := inlineViolation("a.go", 1, domain.LineTypeAdded, domain.SeverityMajor)
	v.Impact = "token leaks into the binary"
	v.Suggestion = "read from os.Getenv"

	body := FormatCommentBody(v)

	assert.Contains(t, body, "🟠 **MAJOR** (security): hardcoded secret")
	assert.Contains(t, body, "credentials must come from the environment")
	assert.Contains(t, body, "**Impact:** token leaks into the binary")
	assert.Contains(t, body, "**Suggestion:** read from os.Getenv")
	assert.Contains(t, body, review.ToolSignature)
}

func TestFormatCommentBodyUnknownSeverity(t *testing.T) {
	v := inlineViolation("a.go", 1, domain.LineTypeAdded, "WEIRD")
	assert.Contains(t, FormatCommentBody(v), "⚪ **WEIRD**")
}

func TestBuildSummary(t *testing.T) {
	violations := []domain.Violation{
		inlineViolation("a.go", 1, domain.LineTypeAdded, domain.SeverityCritical),
		inlineViolation("b.go", 2, domain.LineTypeAdded, domain.SeverityMinor),
		{Type: domain.ViolationTypeGeneral, Severity: domain.SeverityMajor, Category: "docs", Issue: "missing docs", Message: "exported API undocumented"},
	}
	dedup := domain.DeduplicationResult{RemovedExact: 2, RemovedSemanticComments: 1}

	summary := BuildSummary(violations, dedup)

	assert.Contains(t, summary, "Found **3** issue(s)")
	assert.Contains(t, summary, "CRITICAL: 1")
	assert.Contains(t, summary, "MINOR: 1")
	assert.Contains(t, summary, "### General Findings")
	assert.Contains(t, summary, "missing docs")
	assert.Contains(t, summary, "3 duplicate finding(s) suppressed")
	assert.Contains(t, summary, review.ToolSignature)
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := BuildSummary(nil, domain.DeduplicationResult{})

	assert.Contains(t, summary, "No issues found")
	assert.NotContains(t, summary, "General Findings")
	assert.NotContains(t, summary, "suppressed")
}

func TestBuildSummaryDegraded(t *testing.T) {
	summary := BuildSummary(nil, domain.DeduplicationResult{Degraded: true})
	assert.Contains(t, summary, "Semantic duplicate detection was unavailable")
}
