package anthropic

import (
	"context"
	"fmt"
	"time"

	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
	"github.com/juspay/yama-sub000/internal/usecase/review"
)

const defaultSystemPrompt = "You are a code review assistant. Analyze the code changes and report violations in JSON format."

const defaultMaxTokens = 8192

// Client abstracts the HTTP client behaviour the provider needs.
type Client interface {
	Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error)
}

// Provider drives review prompts through the Anthropic API and records
// usage metrics for the run. It implements the orchestrator's analyzer port.
type Provider struct {
	model     string
	client    Client
	system    string
	maxTokens int

	metrics llmhttp.Metrics
	pricing llmhttp.Pricing
	logger  review.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(system string) ProviderOption {
	return func(p *Provider) { p.system = system }
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int) ProviderOption {
	return func(p *Provider) { p.maxTokens = n }
}

// WithMetrics attaches a usage metrics recorder.
func WithMetrics(m llmhttp.Metrics, pricing llmhttp.Pricing) ProviderOption {
	return func(p *Provider) {
		p.metrics = m
		p.pricing = pricing
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger review.Logger) ProviderOption {
	return func(p *Provider) { p.logger = logger }
}

// NewProvider constructs a Provider for the supplied model.
func NewProvider(model string, client Client, opts ...ProviderOption) *Provider {
	p := &Provider{
		model:     model,
		client:    client,
		system:    defaultSystemPrompt,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze sends the prompt and returns the raw response text.
func (p *Provider) Analyze(ctx context.Context, prompt string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("anthropic client missing")
	}

	start := time.Now()
	resp, err := p.client.Call(ctx, prompt, CallOptions{
		MaxTokens: p.maxTokens,
		System:    p.system,
	})
	duration := time.Since(start)

	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordError(providerName, p.model, errorType(err))
		}
		if p.logger != nil {
			p.logger.LogError(ctx, "anthropic call failed", map[string]interface{}{
				"model":       p.model,
				"duration_ms": duration.Milliseconds(),
				"error":       llmhttp.RedactURLSecrets(err.Error()),
			})
		}
		return "", err
	}

	if p.metrics != nil {
		cost := 0.0
		if p.pricing != nil {
			cost = p.pricing.GetCost(providerName, resp.Model, resp.TokensIn, resp.TokensOut)
		}
		p.metrics.RecordCall(providerName, resp.Model, duration, resp.TokensIn, resp.TokensOut, cost)
	}
	if p.logger != nil {
		p.logger.LogInfo(ctx, "anthropic call completed", map[string]interface{}{
			"model":       resp.Model,
			"duration_ms": duration.Milliseconds(),
			"tokens_in":   resp.TokensIn,
			"tokens_out":  resp.TokensOut,
			"stop_reason": resp.StopReason,
			"preview":     llmhttp.TruncateForLogging(resp.Text),
		})
	}

	return resp.Text, nil
}

func errorType(err error) llmhttp.ErrorType {
	if e, ok := err.(*llmhttp.Error); ok {
		return e.Type
	}
	return llmhttp.ErrTypeUnknown
}
