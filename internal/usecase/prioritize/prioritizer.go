package prioritize

import (
	"sort"

	"github.com/juspay/yama-sub000/internal/domain"
)

// TokenEstimator approximates the token cost of a file's diff content.
type TokenEstimator interface {
	EstimateTokens(diffText string) int
}

// Prioritizer orders changed files so that security-sensitive code is
// analyzed first and cheap files lead within each tier.
type Prioritizer struct {
	rules     []Rule
	estimator TokenEstimator
	enabled   bool
}

// New creates a Prioritizer. When enabled is false every file is classified
// medium and only the token sort applies.
func New(rules []Rule, estimator TokenEstimator, enabled bool) *Prioritizer {
	if rules == nil {
		rules = DefaultRules
	}
	return &Prioritizer{rules: rules, estimator: estimator, enabled: enabled}
}

// Prioritize classifies and sorts the given per-file diffs. The sort is
// stable: priority rank ascending, then estimated tokens ascending, then path
// for a deterministic total order.
func (p *Prioritizer) Prioritize(fileDiffs map[string]string) []domain.PrioritizedFile {
	files := make([]domain.PrioritizedFile, 0, len(fileDiffs))
	for path, diffText := range fileDiffs {
		priority := domain.PriorityMedium
		if p.enabled {
			priority = Classify(p.rules, path)
		}
		files = append(files, domain.PrioritizedFile{
			Path:            path,
			Priority:        priority,
			EstimatedTokens: p.estimator.EstimateTokens(diffText),
			Diff:            diffText,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Priority != files[j].Priority {
			return files[i].Priority < files[j].Priority
		}
		if files[i].EstimatedTokens != files[j].EstimatedTokens {
			return files[i].EstimatedTokens < files[j].EstimatedTokens
		}
		return files[i].Path < files[j].Path
	})

	return files
}
