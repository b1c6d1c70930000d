package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/juspay/yama-sub000/internal/adapter/cli"
)

// noopReviewer satisfies cli.Reviewer for tests that never run a review.
type noopReviewer struct{}

func (noopReviewer) Review(ctx context.Context, req cli.ReviewRequest) error {
	return nil
}

func TestCheckSkipCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectSkip     bool // true = skip (exit 0), false = review (exit 1)
	}{
		{
			name:           "skip from commit message",
			args:           []string{"check-skip", "--commit-message", "feat: add feature [skip review]"},
			expectedOutput: "skip: commit message\n",
			expectSkip:     true,
		},
		{
			name:           "skip from PR title",
			args:           []string{"check-skip", "--pr-title", "WIP: Draft [skip-review]"},
			expectedOutput: "skip: PR title\n",
			expectSkip:     true,
		},
		{
			name:           "skip from PR description",
			args:           []string{"check-skip", "--pr-description", "## WIP\n\n[skip review]\n\nNot ready"},
			expectedOutput: "skip: PR description\n",
			expectSkip:     true,
		},
		{
			name:           "case insensitive trigger",
			args:           []string{"check-skip", "--commit-message", "hotfix [SKIP REVIEW]"},
			expectedOutput: "skip: commit message\n",
			expectSkip:     true,
		},
		{
			name:           "repeated commit messages, trigger in second",
			args:           []string{"check-skip", "--commit-message", "feat: ok", "--commit-message", "chore [skip-review]"},
			expectedOutput: "skip: commit message\n",
			expectSkip:     true,
		},
		{
			name:           "no trigger anywhere",
			args:           []string{"check-skip", "--commit-message", "feat: add feature", "--pr-title", "Add feature"},
			expectedOutput: "review: no skip trigger found\n",
			expectSkip:     false,
		},
		{
			name:           "no inputs at all",
			args:           []string{"check-skip"},
			expectedOutput: "review: no skip trigger found\n",
			expectSkip:     false,
		},
		{
			name:           "trigger must be bracketed",
			args:           []string{"check-skip", "--commit-message", "please skip review for this one"},
			expectedOutput: "review: no skip trigger found\n",
			expectSkip:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			root := cli.NewRootCommand(cli.Dependencies{
				Reviewer: noopReviewer{},
				Args:     cli.Arguments{OutWriter: &out, ErrWriter: &errOut},
			})
			root.SetArgs(tt.args)

			err := root.Execute()

			if tt.expectSkip {
				if err != nil {
					t.Fatalf("expected nil error (skip), got %v", err)
				}
			} else {
				if !errors.Is(err, cli.ErrShouldReview) {
					t.Fatalf("expected ErrShouldReview, got %v", err)
				}
			}

			if out.String() != tt.expectedOutput {
				t.Errorf("output = %q, want %q", out.String(), tt.expectedOutput)
			}
		})
	}
}
