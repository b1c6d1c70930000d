package http_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
)

func TestErrorFormatting(t *testing.T) {
	err := &llmhttp.Error{
		Type:       llmhttp.ErrTypeRateLimit,
		Message:    "too many requests",
		StatusCode: 429,
		Retryable:  true,
		Provider:   "anthropic",
	}
	assert.Equal(t, "anthropic: rate limit exceeded: too many requests (status: 429)", err.Error())
}

func TestErrorIsMatchesOnType(t *testing.T) {
	rateLimit := &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit, Message: "a"}
	otherRateLimit := &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit, Message: "b", StatusCode: 429}
	auth := &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication}

	assert.True(t, errors.Is(rateLimit, otherRateLimit))
	assert.False(t, errors.Is(rateLimit, auth))
	assert.False(t, errors.Is(rateLimit, errors.New("rate limit exceeded")))
}

func TestErrorRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       *llmhttp.Error
		retryable bool
	}{
		{"rate limit", &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit, Retryable: true}, true},
		{"service unavailable", &llmhttp.Error{Type: llmhttp.ErrTypeServiceUnavailable, Retryable: true}, true},
		{"timeout", &llmhttp.Error{Type: llmhttp.ErrTypeTimeout, Retryable: true}, true},
		{"authentication", &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication}, false},
		{"invalid request", &llmhttp.Error{Type: llmhttp.ErrTypeInvalidRequest}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "rate limit exceeded", llmhttp.ErrTypeRateLimit.String())
	assert.Equal(t, "authentication error", llmhttp.ErrTypeAuthentication.String())
	assert.Equal(t, "unknown error", llmhttp.ErrTypeUnknown.String())
	assert.Equal(t, "unknown error", llmhttp.ErrorType(99).String())
}
