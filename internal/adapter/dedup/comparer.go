// Package dedup provides LLM-backed semantic similarity scoring for the
// duplicate engine.
package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/dedup"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

const maxCommentBodyChars = 600

// Comparer scores violations for semantic similarity by prompting a model.
// It implements the duplicate engine's scorer port. Errors propagate to the
// engine, which owns the degradation policy.
type Comparer struct {
	analyzer review.Analyzer
}

// NewComparer creates a Comparer on top of any analyzer port implementation.
func NewComparer(analyzer review.Analyzer) *Comparer {
	return &Comparer{analyzer: analyzer}
}

// ScoreAgainstComments rates each violation against each existing comment.
// Only pairs the model considers related come back; absent pairs score zero.
func (c *Comparer) ScoreAgainstComments(ctx context.Context, violations []domain.Violation, comments []domain.PlatformComment) ([]dedup.CommentScore, error) {
	if len(violations) == 0 || len(comments) == 0 {
		return nil, nil
	}

	prompt := buildCommentPrompt(violations, comments)
	response, err := c.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("comment similarity call: %w", err)
	}
	return parseCommentScores(response, len(violations), len(comments))
}

// ScoreIntraRun rates pairwise similarity within one group of violations
// that share a coarse pattern.
func (c *Comparer) ScoreIntraRun(ctx context.Context, group []domain.Violation) ([]dedup.PeerScore, error) {
	if len(group) < 2 {
		return nil, nil
	}

	prompt := buildIntraRunPrompt(group)
	response, err := c.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("intra-run similarity call: %w", err)
	}
	return parsePeerScores(response, len(group))
}

func writeViolation(sb *strings.Builder, index int, v domain.Violation) {
	fmt.Fprintf(sb, "### Violation %d\n", index)
	fmt.Fprintf(sb, "- File: `%s`\n", v.File)
	if v.CodeSnippet != "" {
		fmt.Fprintf(sb, "- Code: `%s`\n", v.CodeSnippet)
	}
	fmt.Fprintf(sb, "- Severity: %s\n", v.Severity)
	fmt.Fprintf(sb, "- Category: %s\n", v.Category)
	fmt.Fprintf(sb, "- Issue: %s\n", v.Issue)
	fmt.Fprintf(sb, "- Message: %s\n\n", v.Message)
}

func buildCommentPrompt(violations []domain.Violation, comments []domain.PlatformComment) string {
	var sb strings.Builder

	sb.WriteString(`You are comparing new code review violations against comments already posted on the pull request.

Two items match when they describe the SAME underlying issue, even if worded differently. Different issues on the same line do NOT match.

`)
	sb.WriteString("## New Violations\n\n")
	for i, v := range violations {
		writeViolation(&sb, i, v)
	}

	sb.WriteString("## Existing Comments\n\n")
	for i, cm := range comments {
		fmt.Fprintf(&sb, "### Comment %d\n", i)
		if cm.Path != "" {
			fmt.Fprintf(&sb, "- Path: `%s` (line %d)\n", cm.Path, cm.Line)
		}
		body := cm.Body
		if len(body) > maxCommentBodyChars {
			body = body[:maxCommentBodyChars] + "..."
		}
		fmt.Fprintf(&sb, "- Body: %s\n\n", body)
	}

	sb.WriteString(`## Response Format

Respond with a JSON object:
{
  "scores": [
    {"violation_index": 0, "comment_index": 2, "similarity_score": 92, "reasoning": "both flag the missing nil check"}
  ]
}
similarity_score is 0-100. Include only pairs scoring 50 or higher. Keep reasoning to one sentence.
`)
	return sb.String()
}

func buildIntraRunPrompt(group []domain.Violation) string {
	var sb strings.Builder

	sb.WriteString(`You are checking a group of code review violations from one run for semantic duplicates.

Two violations are duplicates only when they flag the SAME underlying issue at the SAME file and location: same file + same location = duplicate, different file or different location = NOT a duplicate, regardless of wording. Different issues on the same code are NOT duplicates either.

## Violations

`)
	for i, v := range group {
		writeViolation(&sb, i, v)
	}

	sb.WriteString(`## Response Format

Respond with a JSON object:
{
  "scores": [
    {"violation_index": 1, "peer_index": 0, "similarity_score": 95, "reasoning": "same hardcoded credential pattern"}
  ]
}
similarity_score is 0-100. Compare every pair; include only pairs scoring 50 or higher, with violation_index > peer_index. Keep reasoning to one sentence.
`)
	return sb.String()
}

type commentScorePayload struct {
	Scores []struct {
		ViolationIndex  int    `json:"violation_index"`
		CommentIndex    int    `json:"comment_index"`
		SimilarityScore int    `json:"similarity_score"`
		Reasoning       string `json:"reasoning"`
	} `json:"scores"`
}

func parseCommentScores(response string, violations, comments int) ([]dedup.CommentScore, error) {
	block := review.ExtractJSONBlock(response)
	if block == "" {
		return nil, fmt.Errorf("no JSON in similarity response")
	}

	var payload commentScorePayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("parse similarity response: %w", err)
	}

	var scores []dedup.CommentScore
	for _, s := range payload.Scores {
		if s.ViolationIndex < 0 || s.ViolationIndex >= violations {
			continue
		}
		if s.CommentIndex < 0 || s.CommentIndex >= comments {
			continue
		}
		scores = append(scores, dedup.CommentScore{
			ViolationIndex: s.ViolationIndex,
			CommentIndex:   s.CommentIndex,
			Score:          clampScore(s.SimilarityScore),
			Reasoning:      s.Reasoning,
		})
	}
	return scores, nil
}

type peerScorePayload struct {
	Scores []struct {
		ViolationIndex  int    `json:"violation_index"`
		PeerIndex       int    `json:"peer_index"`
		SimilarityScore int    `json:"similarity_score"`
		Reasoning       string `json:"reasoning"`
	} `json:"scores"`
}

func parsePeerScores(response string, groupSize int) ([]dedup.PeerScore, error) {
	block := review.ExtractJSONBlock(response)
	if block == "" {
		return nil, fmt.Errorf("no JSON in similarity response")
	}

	var payload peerScorePayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("parse similarity response: %w", err)
	}

	var scores []dedup.PeerScore
	for _, s := range payload.Scores {
		if s.ViolationIndex < 0 || s.ViolationIndex >= groupSize {
			continue
		}
		if s.PeerIndex < 0 || s.PeerIndex >= groupSize || s.PeerIndex == s.ViolationIndex {
			continue
		}
		scores = append(scores, dedup.PeerScore{
			ViolationIndex: s.ViolationIndex,
			PeerIndex:      s.PeerIndex,
			Score:          clampScore(s.SimilarityScore),
			Reasoning:      s.Reasoning,
		})
	}
	return scores, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
