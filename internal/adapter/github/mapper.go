package github

import (
	"fmt"
	"strings"

	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

// severityMarkers prefix each comment so severity is visible at a glance.
var severityMarkers = map[string]string{
	domain.SeverityCritical:   "🔴",
	domain.SeverityMajor:      "🟠",
	domain.SeverityMinor:      "🟡",
	domain.SeveritySuggestion: "🔵",
}

// BuildReviewComments converts located violations into inline review
// comments. Violations without a resolved line are skipped; they belong in
// the summary body instead. Comments on removed lines anchor to the left
// side of the diff.
func BuildReviewComments(violations []domain.Violation) []ReviewComment {
	var comments []ReviewComment
	for _, v := range violations {
		if !v.Inline() || v.LineNumber <= 0 || v.File == "" {
			continue
		}

		side := SideRight
		if v.LineType == domain.LineTypeRemoved {
			side = SideLeft
		}

		comments = append(comments, ReviewComment{
			Path: v.File,
			Line: v.LineNumber,
			Side: side,
			Body: FormatCommentBody(v),
		})
	}
	return comments
}

// FormatCommentBody renders a violation as a markdown comment. The tool
// signature is embedded so later runs recognize the comment as ours.
func FormatCommentBody(v domain.Violation) string {
	var b strings.Builder

	marker := severityMarkers[strings.ToUpper(v.Severity)]
	if marker == "" {
		marker = "⚪"
	}
	fmt.Fprintf(&b, "%s **%s** (%s): %s\n\n", marker, strings.ToUpper(v.Severity), v.Category, v.Issue)
	b.WriteString(v.Message)

	if v.Impact != "" {
		fmt.Fprintf(&b, "\n\n**Impact:** %s", v.Impact)
	}
	if v.Suggestion != "" {
		fmt.Fprintf(&b, "\n\n**Suggestion:** %s", v.Suggestion)
	}

	b.WriteString("\n\n")
	b.WriteString(review.ToolSignature)
	return b.String()
}

// BuildSummary renders the run summary posted as the review body: a
// severity breakdown followed by any findings that could not be anchored
// to a diff line.
func BuildSummary(violations []domain.Violation, dedup domain.DeduplicationResult) string {
	var b strings.Builder

	b.WriteString("## Code Review Summary\n\n")

	if len(violations) == 0 {
		b.WriteString("No issues found. ✅\n")
	} else {
		counts := map[string]int{}
		for _, v := range violations {
			counts[strings.ToUpper(v.Severity)]++
		}
		fmt.Fprintf(&b, "Found **%d** issue(s):\n\n", len(violations))
		for _, sev := range []string{domain.SeverityCritical, domain.SeverityMajor, domain.SeverityMinor, domain.SeveritySuggestion} {
			if n := counts[sev]; n > 0 {
				fmt.Fprintf(&b, "- %s %s: %d\n", severityMarkers[sev], sev, n)
			}
		}
	}

	var general []domain.Violation
	for _, v := range violations {
		if !v.Inline() || v.LineNumber <= 0 || v.File == "" {
			general = append(general, v)
		}
	}
	if len(general) > 0 {
		b.WriteString("\n### General Findings\n\n")
		for _, v := range general {
			marker := severityMarkers[strings.ToUpper(v.Severity)]
			fmt.Fprintf(&b, "- %s **%s** (%s): %s — %s\n", marker, strings.ToUpper(v.Severity), v.Category, v.Issue, v.Message)
		}
	}

	if removed := dedup.RemovedTotal(); removed > 0 {
		fmt.Fprintf(&b, "\n_%d duplicate finding(s) suppressed._\n", removed)
	}
	if dedup.Degraded {
		b.WriteString("\n_Semantic duplicate detection was unavailable for this run; near-duplicates may appear._\n")
	}

	b.WriteString("\n")
	b.WriteString(review.ToolSignature)
	return b.String()
}
