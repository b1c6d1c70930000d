package http_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
)

func TestPricingKnownModels(t *testing.T) {
	p := llmhttp.NewDefaultPricing()

	// 1M in + 1M out at sonnet rates
	cost := p.GetCost("anthropic", "claude-sonnet-4-5-20250929", 1_000_000, 1_000_000)
	assert.InDelta(t, 18.00, cost, 1e-9)

	cost = p.GetCost("anthropic", "claude-3-5-haiku-20241022", 500_000, 0)
	assert.InDelta(t, 0.40, cost, 1e-9)
}

func TestPricingUnknownModelIsFree(t *testing.T) {
	p := llmhttp.NewDefaultPricing()
	assert.Zero(t, p.GetCost("anthropic", "claude-imaginary", 1_000_000, 1_000_000))
	assert.Zero(t, p.GetCost("unknown-provider", "whatever", 1_000_000, 1_000_000))
}

func TestPricingZeroTokens(t *testing.T) {
	p := llmhttp.NewDefaultPricing()
	assert.Zero(t, p.GetCost("anthropic", "claude-haiku-4-5", 0, 0))
}
