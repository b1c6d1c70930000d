package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment variables.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "yama"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "YAMA"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return expandEnvVars(cfg), nil
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings,
// so secrets can stay out of the config file.
func expandEnvVars(cfg Config) Config {
	cfg.Provider.APIKey = expandEnvString(cfg.Provider.APIKey)
	cfg.Provider.Model = expandEnvString(cfg.Provider.Model)
	cfg.Provider.Timeout = expandEnvString(cfg.Provider.Timeout)

	cfg.Retry.InitialBackoff = expandEnvString(cfg.Retry.InitialBackoff)
	cfg.Retry.MaxBackoff = expandEnvString(cfg.Retry.MaxBackoff)

	cfg.Git.RepositoryDir = expandEnvString(cfg.Git.RepositoryDir)
	cfg.Output.Directory = expandEnvString(cfg.Output.Directory)
	cfg.Store.Path = expandEnvString(cfg.Store.Path)

	cfg.GitHub.Token = expandEnvString(cfg.GitHub.Token)
	cfg.GitHub.Owner = expandEnvString(cfg.GitHub.Owner)
	cfg.GitHub.Repo = expandEnvString(cfg.GitHub.Repo)

	cfg.Logging.Level = expandEnvString(cfg.Logging.Level)
	cfg.Logging.Format = expandEnvString(cfg.Logging.Format)

	return cfg
}

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	re := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep original if not found
	})

	re = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.name", "anthropic")
	v.SetDefault("provider.model", "claude-sonnet-4-5")
	v.SetDefault("provider.tokenLimit", 100000)
	v.SetDefault("provider.maxTokens", 8192)
	v.SetDefault("provider.timeout", "120s")

	// Batch processing defaults
	v.SetDefault("batchProcessing.maxFilesPerBatch", 3)
	v.SetDefault("batchProcessing.singleRequestThreshold", 5)
	v.SetDefault("batchProcessing.batchDelayMs", 1000)
	v.SetDefault("batchProcessing.tokenFraction", 0.7)
	v.SetDefault("batchProcessing.prioritization", true)
	v.SetDefault("batchProcessing.parallel.enabled", true)
	v.SetDefault("batchProcessing.parallel.maxConcurrentBatches", 3)
	v.SetDefault("batchProcessing.parallel.failureHandling", "continue")
	v.SetDefault("batchProcessing.parallel.staggerDelayMs", 500)

	// Dedup defaults
	v.SetDefault("dedup.enabled", true)
	v.SetDefault("dedup.semantic", true)
	v.SetDefault("dedup.similarityThreshold", 85)
	v.SetDefault("dedup.commentBatchSize", 15)

	// Retry defaults
	v.SetDefault("retry.maxRetries", 5)
	v.SetDefault("retry.initialBackoff", "2s")
	v.SetDefault("retry.maxBackoff", "32s")
	v.SetDefault("retry.backoffMultiplier", 2.0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")

	// Store defaults
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", defaultStorePath())

	// Output defaults
	v.SetDefault("output.directory", "out")

	// GitHub defaults
	v.SetDefault("github.botUsername", "github-actions[bot]")

	// Redaction defaults
	v.SetDefault("redaction.enabled", true)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./reviews.db"
	}
	return filepath.Join(home, ".config", "yama", "reviews.db")
}
