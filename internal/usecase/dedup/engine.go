// Package dedup collapses a raw violation list into a minimal unique set
// through a layered pipeline: exact hash, normalized hash, same-location
// severity arbitration, and semantic similarity scoring.
package dedup

import (
	"context"
	"sort"
	"time"

	"github.com/juspay/yama-sub000/internal/domain"
)

// CommentScore is an LLM similarity verdict between a violation and an
// existing platform comment. Score is 0..100.
type CommentScore struct {
	ViolationIndex int
	CommentIndex   int
	Score          int
	Reasoning      string
}

// PeerScore is an LLM similarity verdict between two violations of the same
// intra-run candidate group.
type PeerScore struct {
	ViolationIndex int
	PeerIndex      int
	Score          int
	Reasoning      string
}

// Scorer delegates similarity scoring to the external AI call. It is used
// only to score; the pipeline alone decides structure.
type Scorer interface {
	// ScoreAgainstComments rates each violation against each existing comment.
	ScoreAgainstComments(ctx context.Context, violations []domain.Violation, comments []domain.PlatformComment) ([]CommentScore, error)

	// ScoreIntraRun rates violations of one candidate group against each
	// other under the rule that only same-file, same-location findings are
	// duplicates.
	ScoreIntraRun(ctx context.Context, group []domain.Violation) ([]PeerScore, error)
}

// Logger receives pipeline warnings.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Config controls the duplicate engine.
type Config struct {
	// SimilarityThreshold is the 0..100 score at or above which a violation
	// is considered a duplicate of an existing comment.
	SimilarityThreshold int

	// CommentBatchSize is how many violations are scored against comments in
	// one scorer call.
	CommentBatchSize int

	// Semantic disables the scorer-backed stage entirely when false.
	Semantic bool
}

// DefaultConfig returns the default duplicate engine configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 85,
		CommentBatchSize:    15,
		Semantic:            true,
	}
}

// Engine is the four-stage duplicate detection pipeline. Every stage is
// order-preserving and idempotent: re-running the pipeline on its own output
// returns it unchanged.
type Engine struct {
	scorer Scorer
	cfg    Config
	logger Logger
}

// NewEngine creates an Engine. scorer and logger may be nil; without a scorer
// the semantic stage is skipped.
func NewEngine(scorer Scorer, cfg Config, logger Logger) *Engine {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 85
	}
	if cfg.CommentBatchSize <= 0 {
		cfg.CommentBatchSize = 15
	}
	return &Engine{scorer: scorer, cfg: cfg, logger: logger}
}

// Deduplicate runs the full pipeline. existingComments should already be
// filtered to prior-tool-authored comments.
func (e *Engine) Deduplicate(ctx context.Context, violations []domain.Violation, existingComments []domain.PlatformComment) domain.DeduplicationResult {
	start := time.Now()
	result := domain.DeduplicationResult{}

	remaining, removed := dedupeExact(violations)
	result.RemovedExact = removed

	remaining, removed = dedupeNormalized(remaining)
	result.RemovedNormalized = removed

	remaining, removed = dedupeSameLocation(remaining)
	result.RemovedSameLocation = removed

	if e.cfg.Semantic && e.scorer != nil {
		semantic, degraded := e.dedupeSemantic(ctx, remaining, existingComments, &result)
		result.Degraded = degraded
		if !degraded {
			remaining = semantic
		}
	}

	result.Unique = remaining
	result.ProcessingTime = time.Since(start)
	return result
}

// dedupeExact keeps the first occurrence per exact fingerprint.
func dedupeExact(violations []domain.Violation) ([]domain.Violation, int) {
	seen := make(map[string]bool, len(violations))
	kept := make([]domain.Violation, 0, len(violations))
	for _, v := range violations {
		fp := v.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		kept = append(kept, v)
	}
	return kept, len(violations) - len(kept)
}

// dedupeNormalized keeps the first occurrence per normalized fingerprint.
func dedupeNormalized(violations []domain.Violation) ([]domain.Violation, int) {
	seen := make(map[string]bool, len(violations))
	kept := make([]domain.Violation, 0, len(violations))
	for _, v := range violations {
		fp := NormalizedFingerprint(v)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		kept = append(kept, v)
	}
	return kept, len(violations) - len(kept)
}

// dedupeSameLocation groups violations by (file, normalized snippet) and
// keeps one per group: the highest severity, ties resolved to earliest seen.
func dedupeSameLocation(violations []domain.Violation) ([]domain.Violation, int) {
	winners := make(map[string]int, len(violations))
	for i, v := range violations {
		key := locationKey(v)
		best, ok := winners[key]
		if !ok || domain.SeverityRank(v.Severity) < domain.SeverityRank(violations[best].Severity) {
			winners[key] = i
		}
	}

	kept := make([]domain.Violation, 0, len(violations))
	for i, v := range violations {
		if winners[locationKey(v)] == i {
			kept = append(kept, v)
		}
	}
	return kept, len(violations) - len(kept)
}

// dedupeSemantic runs the two scorer-backed sub-passes. When the comment pass
// cannot reach the scorer at all, the stage degrades: the pre-semantic list
// stands and degraded is true.
func (e *Engine) dedupeSemantic(ctx context.Context, violations []domain.Violation, comments []domain.PlatformComment, result *domain.DeduplicationResult) ([]domain.Violation, bool) {
	remaining := violations

	if len(comments) > 0 && len(remaining) > 0 {
		filtered, removed, err := e.dedupeAgainstComments(ctx, remaining, comments)
		if err != nil {
			if e.logger != nil {
				e.logger.LogWarning(ctx, "semantic dedup unavailable, using local stages only", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return violations, true
		}
		remaining = filtered
		result.RemovedSemanticComments = removed
	}

	remaining, removed := e.dedupeIntraRun(ctx, remaining)
	result.RemovedSemanticIntraRun = removed

	return remaining, false
}

// dedupeAgainstComments drops violations scored at or above the similarity
// threshold against any existing tool comment. Violations are scored in
// batches to bound prompt size.
func (e *Engine) dedupeAgainstComments(ctx context.Context, violations []domain.Violation, comments []domain.PlatformComment) ([]domain.Violation, int, error) {
	duplicate := make([]bool, len(violations))

	for offset := 0; offset < len(violations); offset += e.cfg.CommentBatchSize {
		end := offset + e.cfg.CommentBatchSize
		if end > len(violations) {
			end = len(violations)
		}

		scores, err := e.scorer.ScoreAgainstComments(ctx, violations[offset:end], comments)
		if err != nil {
			return nil, 0, err
		}
		for _, s := range scores {
			idx := offset + s.ViolationIndex
			if s.ViolationIndex < 0 || idx >= end {
				continue
			}
			if s.Score >= e.cfg.SimilarityThreshold {
				duplicate[idx] = true
			}
		}
	}

	kept := make([]domain.Violation, 0, len(violations))
	for i, v := range violations {
		if !duplicate[i] {
			kept = append(kept, v)
		}
	}
	return kept, len(violations) - len(kept), nil
}

// dedupeIntraRun groups remaining violations by coarse pattern key and asks
// the scorer to arbitrate groups larger than one. A scorer failure for one
// group falls back to local exact-tuple dedup for that group only.
func (e *Engine) dedupeIntraRun(ctx context.Context, violations []domain.Violation) ([]domain.Violation, int) {
	groups := make(map[string][]int)
	var order []string
	for i, v := range violations {
		key := patternKey(v)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	drop := make([]bool, len(violations))
	for _, key := range order {
		indices := groups[key]
		if len(indices) < 2 {
			continue
		}

		group := make([]domain.Violation, len(indices))
		for j, idx := range indices {
			group[j] = violations[idx]
		}

		scores, err := e.scorer.ScoreIntraRun(ctx, group)
		if err != nil {
			if e.logger != nil {
				e.logger.LogWarning(ctx, "intra-run scoring failed for group, using exact-tuple fallback", map[string]interface{}{
					"groupSize": len(group),
					"error":     err.Error(),
				})
			}
			markLocalDuplicates(group, indices, drop)
			continue
		}
		markScoredDuplicates(scores, group, indices, drop, e.cfg.SimilarityThreshold)
	}

	kept := make([]domain.Violation, 0, len(violations))
	for i, v := range violations {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	return kept, len(violations) - len(kept)
}

// markScoredDuplicates drops the later member of each scored duplicate pair.
// Pairs in different files, or on different known lines, are never duplicates
// no matter how high the score: the scorer judges wording, the pipeline owns
// structure.
func markScoredDuplicates(scores []PeerScore, group []domain.Violation, indices []int, drop []bool, threshold int) {
	// Process pairs deterministically regardless of scorer output order.
	sorted := make([]PeerScore, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ViolationIndex != sorted[j].ViolationIndex {
			return sorted[i].ViolationIndex < sorted[j].ViolationIndex
		}
		return sorted[i].PeerIndex < sorted[j].PeerIndex
	})

	for _, s := range sorted {
		if s.Score < threshold {
			continue
		}
		a, b := s.ViolationIndex, s.PeerIndex
		if a < 0 || b < 0 || a >= len(indices) || b >= len(indices) || a == b {
			continue
		}
		if group[a].File != group[b].File {
			continue
		}
		if group[a].LineNumber > 0 && group[b].LineNumber > 0 && group[a].LineNumber != group[b].LineNumber {
			continue
		}
		// Keep the earlier-seen member
		first, second := indices[a], indices[b]
		if first > second {
			first, second = second, first
		}
		if !drop[first] {
			drop[second] = true
		}
	}
}

// markLocalDuplicates keeps the first occurrence per exact
// (file, issue, snippet) tuple within a group.
func markLocalDuplicates(group []domain.Violation, indices []int, drop []bool) {
	seen := make(map[string]bool, len(group))
	for j, v := range group {
		key := exactTupleKey(v)
		if seen[key] {
			drop[indices[j]] = true
			continue
		}
		seen[key] = true
	}
}
