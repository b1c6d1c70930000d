package static

import "context"

// Provider returns a canned analysis response without calling any API. It
// implements the orchestrator's analyzer port for dry runs and tests.
type Provider struct {
	response string
}

// NewProvider constructs a static Provider. With an empty response it reports
// a clean review.
func NewProvider(response string) *Provider {
	if response == "" {
		response = `{"violations":[]}`
	}
	return &Provider{response: response}
}

// Analyze returns the canned response regardless of prompt.
func (p *Provider) Analyze(ctx context.Context, prompt string) (string, error) {
	return p.response, nil
}
