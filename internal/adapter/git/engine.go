// Package git produces per-file unified diffs from a local repository.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	formatdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Engine reads diffs out of a local repository using go-git, falling back to
// the git binary for working-tree state.
type Engine struct {
	repoDir string
}

// NewEngine constructs an Engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// FileDiffs returns the per-file unified diffs between the supplied refs,
// keyed by file path (old path for deletions). Binary files are skipped;
// renamed files key off the new path. With includeUncommitted the target is
// the working tree instead of targetRef.
func (e *Engine) FileDiffs(ctx context.Context, baseRef, targetRef string, includeUncommitted bool) (map[string]string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve base ref: %w", err)
	}

	if includeUncommitted {
		return diffWithWorkingTree(ctx, e.repoDir, baseRef)
	}

	targetCommit, err := resolveCommit(repo, targetRef)
	if err != nil {
		return nil, fmt.Errorf("resolve target ref: %w", err)
	}

	patch, err := baseCommit.Patch(targetCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}

	diffs := make(map[string]string, len(patch.FilePatches()))
	for _, fp := range patch.FilePatches() {
		path := patchPath(fp)
		if path == "" {
			continue
		}
		patchText, err := encodeFilePatch(fp)
		if err != nil {
			return nil, fmt.Errorf("encode patch for %s: %w", path, err)
		}
		if isBinaryPatch(patchText) {
			continue
		}
		diffs[path] = patchText
	}
	return diffs, nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if name := head.Name(); name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

// patchPath picks the review-relevant path for a file patch: the new path
// when the file still exists, the old path for deletions.
func patchPath(fp formatdiff.FilePatch) string {
	from, to := fp.Files()
	switch {
	case to != nil:
		return to.Path()
	case from != nil:
		return from.Path()
	default:
		return ""
	}
}

// isBinaryPatch checks the markers git leaves for binary content.
func isBinaryPatch(patchText string) bool {
	return strings.Contains(patchText, "Binary files") ||
		strings.Contains(patchText, "GIT binary patch")
}

func diffWithWorkingTree(ctx context.Context, repoDir, baseRef string) (map[string]string, error) {
	statusOut, err := runGitCommand(ctx, repoDir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}

	diffs := make(map[string]string)
	trimmed := strings.TrimRight(statusOut, "\r\n")
	if trimmed == "" {
		return diffs, nil
	}

	for _, line := range strings.Split(trimmed, "\n") {
		if len(line) < 3 {
			continue
		}
		path := extractPath(line)
		patchOut, err := runGitCommand(ctx, repoDir, "diff", baseRef, "--", path)
		if err != nil {
			return nil, fmt.Errorf("git diff %s: %w", path, err)
		}
		if patchOut == "" || isBinaryPatch(patchOut) {
			continue
		}
		diffs[path] = patchOut
	}
	return diffs, nil
}

func runGitCommand(ctx context.Context, repoDir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %v: %w", args, err)
	}
	return stdout.String(), nil
}

// extractPath reads the path from a porcelain status line, taking the new
// side of a rename ("R  old -> new").
func extractPath(line string) string {
	pathPart := strings.TrimSpace(line[3:])
	if _, after, found := strings.Cut(pathPart, " -> "); found {
		return strings.TrimSpace(after)
	}
	return pathPart
}

func encodeFilePatch(fp formatdiff.FilePatch) (string, error) {
	var buf bytes.Buffer
	encoder := formatdiff.NewUnifiedEncoder(&buf, formatdiff.DefaultContextLines)
	if err := encoder.Encode(singlePatch{fp: fp}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type singlePatch struct {
	fp formatdiff.FilePatch
}

func (s singlePatch) FilePatches() []formatdiff.FilePatch {
	return []formatdiff.FilePatch{s.fp}
}

func (s singlePatch) Message() string {
	return ""
}
