package config

// Config represents the full application configuration.
type Config struct {
	Provider        ProviderConfig  `yaml:"provider"`
	BatchProcessing BatchConfig     `yaml:"batchProcessing"`
	Dedup           DedupConfig     `yaml:"dedup"`
	Retry           RetryConfig     `yaml:"retry"`
	Logging         LoggingConfig   `yaml:"logging"`
	Store           StoreConfig     `yaml:"store"`
	Output          OutputConfig    `yaml:"output"`
	Git             GitConfig       `yaml:"git"`
	GitHub          GitHubConfig    `yaml:"github"`
	Redaction       RedactionConfig `yaml:"redaction"`
}

// ProviderConfig configures the LLM provider used for analysis and
// similarity scoring.
type ProviderConfig struct {
	Name       string `yaml:"name"` // anthropic, static
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey"`
	TokenLimit int    `yaml:"tokenLimit"` // safe request token limit
	MaxTokens  int    `yaml:"maxTokens"`  // response token cap
	Timeout    string `yaml:"timeout"`
}

// BatchConfig controls how file diffs are grouped into analysis batches.
type BatchConfig struct {
	MaxFilesPerBatch       int            `yaml:"maxFilesPerBatch"`
	SingleRequestThreshold int            `yaml:"singleRequestThreshold"`
	BatchDelayMs           int            `yaml:"batchDelayMs"`
	TokenFraction          float64        `yaml:"tokenFraction"` // fraction of tokenLimit per batch
	Prioritization         bool           `yaml:"prioritization"`
	Parallel               ParallelConfig `yaml:"parallel"`
}

// ParallelConfig controls concurrent batch execution.
type ParallelConfig struct {
	Enabled              bool   `yaml:"enabled"`
	MaxConcurrentBatches int    `yaml:"maxConcurrentBatches"`
	FailureHandling      string `yaml:"failureHandling"` // continue, stop-all
	StaggerDelayMs       int    `yaml:"staggerDelayMs"`
}

// DedupConfig controls duplicate suppression.
type DedupConfig struct {
	Enabled             bool `yaml:"enabled"`
	Semantic            bool `yaml:"semantic"`
	SimilarityThreshold int  `yaml:"similarityThreshold"`
	CommentBatchSize    int  `yaml:"commentBatchSize"`
}

// RetryConfig holds retry settings for outbound API calls.
type RetryConfig struct {
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// LoggingConfig configures the run logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // human, json, auto
}

// StoreConfig configures the run persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig configures local report output.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// GitConfig locates the repository for local diff extraction.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// GitHubConfig configures posting results to a pull request.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// BotUsername is the account prior tool comments are attributed to,
	// used to recognize our own comments from earlier runs.
	BotUsername string `yaml:"botUsername"`
}

// RedactionConfig controls secret redaction of diffs before analysis.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Provider = chooseProvider(base.Provider, overlay.Provider)
	result.BatchProcessing = chooseBatch(base.BatchProcessing, overlay.BatchProcessing)
	result.Dedup = chooseDedup(base.Dedup, overlay.Dedup)
	result.Retry = chooseRetry(base.Retry, overlay.Retry)
	result.Logging = chooseLogging(base.Logging, overlay.Logging)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Git = chooseGit(base.Git, overlay.Git)
	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)

	return result
}

func chooseProvider(base, overlay ProviderConfig) ProviderConfig {
	result := base
	if overlay.Name != "" {
		result.Name = overlay.Name
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	if overlay.TokenLimit != 0 {
		result.TokenLimit = overlay.TokenLimit
	}
	if overlay.MaxTokens != 0 {
		result.MaxTokens = overlay.MaxTokens
	}
	if overlay.Timeout != "" {
		result.Timeout = overlay.Timeout
	}
	return result
}

func chooseBatch(base, overlay BatchConfig) BatchConfig {
	result := base
	if overlay.MaxFilesPerBatch != 0 {
		result.MaxFilesPerBatch = overlay.MaxFilesPerBatch
	}
	if overlay.SingleRequestThreshold != 0 {
		result.SingleRequestThreshold = overlay.SingleRequestThreshold
	}
	if overlay.BatchDelayMs != 0 {
		result.BatchDelayMs = overlay.BatchDelayMs
	}
	if overlay.TokenFraction != 0 {
		result.TokenFraction = overlay.TokenFraction
	}
	if overlay.Prioritization {
		result.Prioritization = true
	}
	if overlay.Parallel.hasAny() {
		result.Parallel = overlay.Parallel
	}
	return result
}

func (p ParallelConfig) hasAny() bool {
	return p.Enabled || p.MaxConcurrentBatches != 0 || p.FailureHandling != "" || p.StaggerDelayMs != 0
}

func chooseDedup(base, overlay DedupConfig) DedupConfig {
	if overlay.Enabled || overlay.Semantic || overlay.SimilarityThreshold != 0 || overlay.CommentBatchSize != 0 {
		return overlay
	}
	return base
}

func chooseRetry(base, overlay RetryConfig) RetryConfig {
	if overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseLogging(base, overlay LoggingConfig) LoggingConfig {
	result := base
	if overlay.Level != "" {
		result.Level = overlay.Level
	}
	if overlay.Format != "" {
		result.Format = overlay.Format
	}
	return result
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	result := base
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.Owner != "" {
		result.Owner = overlay.Owner
	}
	if overlay.Repo != "" {
		result.Repo = overlay.Repo
	}
	if overlay.BotUsername != "" {
		result.BotUsername = overlay.BotUsername
	}
	return result
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	if overlay.Enabled {
		return overlay
	}
	return base
}
