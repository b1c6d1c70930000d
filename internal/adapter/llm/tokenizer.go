// Package llm provides LLM provider adapters.
package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	defaultEncoder *tiktoken.Tiktoken
	encoderOnce    sync.Once
	encoderErr     error
)

// getEncoder returns the shared tiktoken encoder, initializing it lazily.
// Uses cl100k_base, which is a reasonable approximation for all modern
// providers when budgeting request sizes.
func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		defaultEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return defaultEncoder, encoderErr
}

// promptOverhead accounts for the per-file framing the batch prompt adds
// around each diff (headers, fences, instructions share).
const promptOverhead = 200

// TokenEstimator counts tokens with the cl100k_base encoding. It satisfies
// the prioritizer's estimator port and is more accurate than the byte
// heuristic for diffs dense in symbols.
type TokenEstimator struct{}

// EstimateTokens returns the token cost of sending one file diff, including
// the prompt framing overhead. Falls back to a byte heuristic when the
// encoder cannot be initialized.
func (TokenEstimator) EstimateTokens(diffText string) int {
	enc, err := getEncoder()
	if err != nil {
		return len(diffText)/4 + promptOverhead
	}
	return len(enc.Encode(diffText, nil, nil)) + promptOverhead
}
