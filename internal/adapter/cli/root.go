package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ReviewRequest carries everything the review command collected from flags.
type ReviewRequest struct {
	PRNumber   int
	BaseRef    string
	TargetRef  string
	RepoDir    string
	ConfigPath string
	OutputDir  string

	IncludeUncommitted bool

	// Post publishes the result to the pull request; Owner, Repo and
	// CommitSHA are required when set.
	Post      bool
	Owner     string
	Repo      string
	CommitSHA string
}

// Reviewer runs a full review for the collected request.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer      Reviewer
	Args          Arguments
	DefaultOutput string
	Version       string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "yama",
		Short: "AI code review pipeline",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps.Reviewer, deps.DefaultOutput))
	root.AddCommand(checkSkipCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func reviewCommand(reviewer Reviewer, defaultOutput string) *cobra.Command {
	var req ReviewRequest

	cmd := &cobra.Command{
		Use:   "review [target]",
		Short: "Review a change set and report violations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				req.TargetRef = args[0]
			}

			if req.Post {
				if req.Owner == "" || req.Repo == "" {
					return fmt.Errorf("--owner and --repo are required when --post is set")
				}
				if req.PRNumber <= 0 {
					return fmt.Errorf("--pr must be a positive integer when --post is set")
				}
				if req.CommitSHA == "" {
					return fmt.Errorf("--commit-sha is required when --post is set")
				}
			}

			return reviewer.Review(cmd.Context(), req)
		},
	}

	cmd.Flags().IntVar(&req.PRNumber, "pr", 0, "Pull request number")
	cmd.Flags().StringVar(&req.BaseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&req.TargetRef, "target", "", "Target branch to review (overrides positional)")
	cmd.Flags().StringVar(&req.RepoDir, "repo-dir", ".", "Path to the git repository")
	cmd.Flags().StringVar(&req.ConfigPath, "config", "", "Directory containing yama.yaml")
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	cmd.Flags().StringVar(&req.OutputDir, "output", defaultOutput, "Directory to write review reports")
	cmd.Flags().BoolVar(&req.IncludeUncommitted, "include-uncommitted", false, "Include uncommitted changes on the target branch")
	cmd.Flags().BoolVar(&req.Post, "post", false, "Post the review to the pull request")
	cmd.Flags().StringVar(&req.Owner, "owner", "", "Repository owner (required with --post)")
	cmd.Flags().StringVar(&req.Repo, "repo", "", "Repository name (required with --post)")
	cmd.Flags().StringVar(&req.CommitSHA, "commit-sha", "", "Head commit SHA (required with --post)")

	return cmd
}
