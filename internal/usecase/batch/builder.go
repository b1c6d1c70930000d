// Package batch groups prioritized files into token- and count-bounded
// batches for analysis.
package batch

import "github.com/juspay/yama-sub000/internal/domain"

// Limits bounds a single batch.
type Limits struct {
	MaxFiles  int
	MaxTokens int
}

// TokensFromLimit derives the per-batch token cap as a fraction of the safe
// per-request token limit, leaving headroom for prompt scaffolding and the
// response. A non-positive fraction falls back to 0.7.
func TokensFromLimit(requestTokenLimit int, fraction float64) int {
	if fraction <= 0 || fraction > 1 {
		fraction = 0.7
	}
	return int(float64(requestTokenLimit) * fraction)
}

// Build greedily packs files into ordered batches. A new batch starts when
// appending a file would exceed either cap and the current batch is
// non-empty; a single file that alone exceeds the token cap is still placed
// alone. Input order is preserved, so callers should pass the prioritized
// ordering. Batch priority is the highest priority among member files.
func Build(files []domain.PrioritizedFile, limits Limits) []domain.FileBatch {
	if len(files) == 0 {
		return nil
	}

	maxFiles := limits.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 1
	}

	var batches []domain.FileBatch
	current := newBatch(0)

	for _, f := range files {
		exceedsFiles := len(current.Files) >= maxFiles
		exceedsTokens := limits.MaxTokens > 0 && current.EstimatedTokens+f.EstimatedTokens > limits.MaxTokens

		if (exceedsFiles || exceedsTokens) && len(current.Files) > 0 {
			batches = append(batches, current)
			current = newBatch(len(batches))
		}
		appendFile(&current, f)
	}

	if len(current.Files) > 0 {
		batches = append(batches, current)
	}

	return batches
}

func newBatch(index int) domain.FileBatch {
	return domain.FileBatch{Index: index, Priority: domain.PriorityLow}
}

func appendFile(b *domain.FileBatch, f domain.PrioritizedFile) {
	b.Files = append(b.Files, f)
	b.EstimatedTokens += f.EstimatedTokens
	// High outranks medium outranks low; a batch is promoted, never demoted.
	if f.Priority < b.Priority {
		b.Priority = f.Priority
	}
}
