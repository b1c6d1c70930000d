package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvString(t *testing.T) {
	os.Setenv("TEST_API_KEY", "secret-key-123")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_API_KEY")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_API_KEY}",
			expected: "secret-key-123",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_API_KEY",
			expected: "secret-key-123",
		},
		{
			name:     "expand in middle of string",
			input:    "key:${TEST_API_KEY}:end",
			expected: "key:secret-key-123:end",
		},
		{
			name:     "expand multiple variables",
			input:    "${TEST_API_KEY}:${TEST_PATH}",
			expected: "secret-key-123:/path/to/data",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("REVIEW_API_KEY", "sk-test-123")
	os.Setenv("REVIEW_GH_TOKEN", "ghp_abc")
	defer os.Unsetenv("REVIEW_API_KEY")
	defer os.Unsetenv("REVIEW_GH_TOKEN")

	cfg := Config{
		Provider: ProviderConfig{APIKey: "${REVIEW_API_KEY}"},
		GitHub:   GitHubConfig{Token: "$REVIEW_GH_TOKEN", Owner: "acme"},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "sk-test-123", expanded.Provider.APIKey)
	assert.Equal(t, "ghp_abc", expanded.GitHub.Token)
	assert.Equal(t, "acme", expanded.GitHub.Owner)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, 100000, cfg.Provider.TokenLimit)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxFilesPerBatch)
	assert.Equal(t, 5, cfg.BatchProcessing.SingleRequestThreshold)
	assert.InDelta(t, 0.7, cfg.BatchProcessing.TokenFraction, 0.0001)
	assert.True(t, cfg.BatchProcessing.Prioritization)
	assert.True(t, cfg.BatchProcessing.Parallel.Enabled)
	assert.Equal(t, 3, cfg.BatchProcessing.Parallel.MaxConcurrentBatches)
	assert.Equal(t, "continue", cfg.BatchProcessing.Parallel.FailureHandling)
	assert.True(t, cfg.Dedup.Enabled)
	assert.Equal(t, 85, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, 15, cfg.Dedup.CommentBatchSize)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "github-actions[bot]", cfg.GitHub.BotUsername)
	assert.True(t, cfg.Redaction.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
provider:
  name: static
  model: static-v1
  tokenLimit: 50000
batchProcessing:
  maxFilesPerBatch: 5
  parallel:
    enabled: false
    failureHandling: stop-all
dedup:
  enabled: true
  semantic: false
  similarityThreshold: 90
github:
  owner: acme
  repo: widgets
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yama.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "static", cfg.Provider.Name)
	assert.Equal(t, 50000, cfg.Provider.TokenLimit)
	assert.Equal(t, 5, cfg.BatchProcessing.MaxFilesPerBatch)
	assert.False(t, cfg.BatchProcessing.Parallel.Enabled)
	assert.Equal(t, "stop-all", cfg.BatchProcessing.Parallel.FailureHandling)
	assert.False(t, cfg.Dedup.Semantic)
	assert.Equal(t, 90, cfg.Dedup.SimilarityThreshold)
	assert.Equal(t, "acme", cfg.GitHub.Owner)

	// untouched sections keep their defaults
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
}

func TestLoadCustomFileName(t *testing.T) {
	dir := t.TempDir()
	content := "provider:\n  name: static\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}, FileName: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Provider.Name)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yama.yaml"), []byte("provider: [unclosed"), 0o644))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	assert.Error(t, err)
}
