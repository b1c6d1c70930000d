package cli_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/juspay/yama-sub000/internal/adapter/cli"
)

type reviewerStub struct {
	request cli.ReviewRequest
	called  bool
	err     error
}

func (r *reviewerStub) Review(ctx context.Context, req cli.ReviewRequest) error {
	r.called = true
	r.request = req
	return r.err
}

func newRoot(stub *reviewerStub) *cli.Dependencies {
	return &cli.Dependencies{
		Reviewer:      stub,
		Args:          cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		DefaultOutput: "build",
		Version:       "v1.2.3",
	}
}

func TestReviewCommandInvokesReviewer(t *testing.T) {
	stub := &reviewerStub{}
	root := cli.NewRootCommand(*newRoot(stub))

	root.SetArgs([]string{"review", "feature", "--base", "master", "--include-uncommitted", "--pr", "42"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if !stub.called {
		t.Fatal("expected reviewer to be invoked")
	}
	if stub.request.TargetRef != "feature" {
		t.Fatalf("expected target ref feature, got %s", stub.request.TargetRef)
	}
	if stub.request.BaseRef != "master" {
		t.Fatalf("expected base ref master, got %s", stub.request.BaseRef)
	}
	if stub.request.OutputDir != "build" {
		t.Fatalf("expected default output dir build, got %s", stub.request.OutputDir)
	}
	if !stub.request.IncludeUncommitted {
		t.Fatal("expected include uncommitted to be true")
	}
	if stub.request.PRNumber != 42 {
		t.Fatalf("expected pr number 42, got %d", stub.request.PRNumber)
	}
}

func TestReviewCommandTargetFlagOverridesPositional(t *testing.T) {
	stub := &reviewerStub{}
	root := cli.NewRootCommand(*newRoot(stub))

	root.SetArgs([]string{"review", "--target", "topic"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.TargetRef != "topic" {
		t.Fatalf("expected target ref topic, got %s", stub.request.TargetRef)
	}
}

func TestReviewCommandPostRequiresTarget(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing owner and repo",
			args: []string{"review", "--post", "--pr", "1", "--commit-sha", "abc"},
			want: "--owner and --repo are required",
		},
		{
			name: "missing pr number",
			args: []string{"review", "--post", "--owner", "acme", "--repo", "widgets", "--commit-sha", "abc"},
			want: "--pr must be a positive integer",
		},
		{
			name: "missing commit sha",
			args: []string{"review", "--post", "--owner", "acme", "--repo", "widgets", "--pr", "1"},
			want: "--commit-sha is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &reviewerStub{}
			root := cli.NewRootCommand(*newRoot(stub))
			root.SetArgs(tt.args)

			err := root.Execute()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if stub.called {
				t.Fatal("reviewer should not run on validation failure")
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	stub := &reviewerStub{}
	var out bytes.Buffer
	deps := newRoot(stub)
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: io.Discard}
	root := cli.NewRootCommand(*deps)

	root.SetArgs([]string{"--version"})
	err := root.Execute()
	if err != cli.ErrVersionRequested {
		t.Fatalf("expected ErrVersionRequested, got %v", err)
	}
	if !strings.Contains(out.String(), "v1.2.3") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}
