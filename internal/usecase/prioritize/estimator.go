package prioritize

// Token estimation constants. BaseOverhead covers the per-file share of
// prompt scaffolding; DefaultEstimate is used when the diff content cannot
// be inspected at all.
const (
	BaseOverhead    = 200
	DefaultEstimate = 1000
	bytesPerToken   = 4
)

// HeuristicEstimator approximates token cost as ceil(len/4) plus a fixed
// overhead. It is the default estimator; an encoder-backed implementation
// can be substituted through the TokenEstimator interface.
type HeuristicEstimator struct{}

// EstimateTokens returns ceil(len(diffText)/4) + BaseOverhead.
// An empty diff returns the fixed default estimate instead of failing.
func (HeuristicEstimator) EstimateTokens(diffText string) int {
	if diffText == "" {
		return DefaultEstimate
	}
	return (len(diffText)+bytesPerToken-1)/bytesPerToken + BaseOverhead
}
