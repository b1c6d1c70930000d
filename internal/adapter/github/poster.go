package github

import (
	"context"

	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

// API is the subset of Client used by the poster.
type API interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*CreateReviewResponse, error)
	ListPullComments(ctx context.Context, owner, repo string, pullNumber int) ([]PullComment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, pullNumber int, body string) error
}

// Target identifies the pull request a review run operates on.
type Target struct {
	Owner      string
	Repo       string
	PullNumber int
	CommitSHA  string
}

// Poster publishes review results to a GitHub pull request.
type Poster struct {
	api    API
	target Target
	logger review.Logger
}

// NewPoster creates a poster for the given pull request.
func NewPoster(api API, target Target, logger review.Logger) *Poster {
	return &Poster{api: api, target: target, logger: logger}
}

// ExistingComments fetches the inline comments already on the pull request,
// for duplicate suppression against prior runs.
func (p *Poster) ExistingComments(ctx context.Context) ([]domain.PlatformComment, error) {
	raw, err := p.api.ListPullComments(ctx, p.target.Owner, p.target.Repo, p.target.PullNumber)
	if err != nil {
		return nil, err
	}

	comments := make([]domain.PlatformComment, 0, len(raw))
	for _, c := range raw {
		comments = append(comments, domain.PlatformComment{
			ID:     c.ID,
			Author: c.User.Login,
			Body:   c.Body,
			Path:   c.Path,
			Line:   c.Line,
		})
	}
	return comments, nil
}

// PostReview publishes the violations as a single review: located violations
// become inline comments, everything else lands in the summary body. When
// there are no inline comments the summary goes out as a conversation
// comment instead, since GitHub rejects empty reviews on some configurations.
func (p *Poster) PostReview(ctx context.Context, violations []domain.Violation, dedup domain.DeduplicationResult) error {
	comments := BuildReviewComments(violations)
	summary := BuildSummary(violations, dedup)

	if len(comments) == 0 {
		if err := p.api.CreateIssueComment(ctx, p.target.Owner, p.target.Repo, p.target.PullNumber, summary); err != nil {
			return err
		}
		p.logInfo(ctx, "posted summary comment", map[string]interface{}{
			"pr": p.target.PullNumber,
		})
		return nil
	}

	resp, err := p.api.CreateReview(ctx, CreateReviewInput{
		Owner:      p.target.Owner,
		Repo:       p.target.Repo,
		PullNumber: p.target.PullNumber,
		CommitSHA:  p.target.CommitSHA,
		Event:      EventComment,
		Summary:    summary,
		Comments:   comments,
	})
	if err != nil {
		return err
	}

	p.logInfo(ctx, "posted review", map[string]interface{}{
		"pr":              p.target.PullNumber,
		"review_id":       resp.ID,
		"inline_comments": len(comments),
	})
	return nil
}

func (p *Poster) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.LogInfo(ctx, msg, fields)
	}
}
