package http_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
)

func TestTruncateForLogging(t *testing.T) {
	short := "short response"
	assert.Equal(t, short, llmhttp.TruncateForLogging(short))

	exact := strings.Repeat("a", llmhttp.MaxLoggedResponseLength)
	assert.Equal(t, exact, llmhttp.TruncateForLogging(exact))

	long := strings.Repeat("b", llmhttp.MaxLoggedResponseLength+500)
	got := llmhttp.TruncateForLogging(long)
	assert.Contains(t, got, "truncated")
	assert.Less(t, len(got), len(long))
	assert.True(t, strings.HasPrefix(got, strings.Repeat("b", llmhttp.MaxLoggedResponseLength)))
}

func TestTruncateForLoggingHidesTailSecrets(t *testing.T) {
	body := strings.Repeat("x", llmhttp.MaxLoggedResponseLength) + `AWS_SECRET_ACCESS_KEY="abcd1234"`
	got := llmhttp.TruncateForLogging(body)
	assert.NotContains(t, got, "AWS_SECRET_ACCESS_KEY")
}

func TestRedactURLSecrets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "key parameter",
			in:   "https://api.example.com/v1?key=secret123&foo=bar",
			want: "https://api.example.com/v1?key=[REDACTED]&foo=bar",
		},
		{
			name: "access token",
			in:   "call failed: https://x.test/cb?access_token=abc",
			want: "call failed: https://x.test/cb?access_token=[REDACTED]",
		},
		{
			name: "no secrets",
			in:   "https://api.example.com/v1/messages",
			want: "https://api.example.com/v1/messages",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llmhttp.RedactURLSecrets(tt.in))
		})
	}
}
