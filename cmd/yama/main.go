package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/juspay/yama-sub000/internal/adapter/cli"
	dedupadapter "github.com/juspay/yama-sub000/internal/adapter/dedup"
	"github.com/juspay/yama-sub000/internal/adapter/git"
	githubadapter "github.com/juspay/yama-sub000/internal/adapter/github"
	"github.com/juspay/yama-sub000/internal/adapter/llm"
	"github.com/juspay/yama-sub000/internal/adapter/llm/anthropic"
	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
	"github.com/juspay/yama-sub000/internal/adapter/llm/static"
	"github.com/juspay/yama-sub000/internal/adapter/observability"
	jsonout "github.com/juspay/yama-sub000/internal/adapter/output/json"
	"github.com/juspay/yama-sub000/internal/adapter/output/markdown"
	storeadapter "github.com/juspay/yama-sub000/internal/adapter/store"
	"github.com/juspay/yama-sub000/internal/adapter/store/sqlite"
	"github.com/juspay/yama-sub000/internal/config"
	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/redaction"
	"github.com/juspay/yama-sub000/internal/store"
	"github.com/juspay/yama-sub000/internal/usecase/dedup"
	"github.com/juspay/yama-sub000/internal/usecase/execute"
	"github.com/juspay/yama-sub000/internal/usecase/review"
	"github.com/juspay/yama-sub000/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: &app{},
		Version:  version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// app wires configuration and adapters into the review pipeline for one run.
type app struct{}

func (a *app) Review(ctx context.Context, req cli.ReviewRequest) error {
	cfg, err := loadConfig(req)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := observability.NewLogger(
		observability.ParseLevel(cfg.Logging.Level),
		observability.ParseFormat(cfg.Logging.Format),
	)

	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	deps := review.Deps{
		Analyzer:  analyzer,
		Estimator: llm.TokenEstimator{},
		Logger:    logger,
	}
	if cfg.Dedup.Enabled && cfg.Dedup.Semantic {
		deps.Scorer = dedupadapter.NewComparer(analyzer)
	}
	if cfg.Redaction.Enabled {
		deps.Redactor = redaction.NewEngine()
	}

	orchestrator := review.NewOrchestrator(deps, orchestratorConfig(cfg))

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}
	gitEngine := git.NewEngine(repoDir)
	fileDiffs, err := gitEngine.FileDiffs(ctx, req.BaseRef, req.TargetRef, req.IncludeUncommitted)
	if err != nil {
		return fmt.Errorf("diff extraction failed: %w", err)
	}

	var poster *githubadapter.Poster
	var existing []domain.PlatformComment
	if req.Post {
		token := cfg.GitHub.Token
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("github token required to post: set github.token or GITHUB_TOKEN")
		}
		client := githubadapter.NewClient(token)
		if cfg.Retry.MaxRetries > 0 {
			client.SetMaxRetries(cfg.Retry.MaxRetries)
		}
		poster = githubadapter.NewPoster(client, githubadapter.Target{
			Owner:      req.Owner,
			Repo:       req.Repo,
			PullNumber: req.PRNumber,
			CommitSHA:  req.CommitSHA,
		}, logger)

		existing, err = poster.ExistingComments(ctx)
		if err != nil {
			logger.LogWarning(ctx, "failed to fetch existing comments", map[string]interface{}{
				"error": err.Error(),
			})
			existing = nil
		}
	}

	result, err := orchestrator.Run(ctx, review.Request{
		PRID:             prID(req),
		FileDiffs:        fileDiffs,
		ExistingComments: existing,
	})
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if err := writeReports(ctx, cfg, req, result, logger); err != nil {
		return err
	}

	if poster != nil {
		if err := poster.PostReview(ctx, result.Violations, result.Dedup); err != nil {
			return fmt.Errorf("posting review failed: %w", err)
		}
	}

	if cfg.Store.Enabled {
		recordRun(ctx, cfg, req, result, logger)
	}

	return nil
}

// loadConfig loads file and environment configuration and overlays the CLI
// flag values on top.
func loadConfig(req cli.ReviewRequest) (config.Config, error) {
	paths := defaultConfigPaths()
	if req.ConfigPath != "" {
		paths = []string{req.ConfigPath}
	}

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: paths,
		FileName:    "yama",
		EnvPrefix:   "YAMA",
	})
	if err != nil {
		return config.Config{}, err
	}

	return config.Merge(cfg, flagOverlay(req)), nil
}

// flagOverlay converts the request's flag values into a config overlay so
// explicit flags win over file and environment settings.
func flagOverlay(req cli.ReviewRequest) config.Config {
	var overlay config.Config
	if req.RepoDir != "" && req.RepoDir != "." {
		overlay.Git.RepositoryDir = req.RepoDir
	}
	if req.OutputDir != "" && req.OutputDir != "out" {
		overlay.Output.Directory = req.OutputDir
	}
	overlay.GitHub.Owner = req.Owner
	overlay.GitHub.Repo = req.Repo
	return overlay
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "yama"))
	}
	return paths
}

// buildAnalyzer constructs the LLM port from provider configuration.
func buildAnalyzer(cfg config.Config, logger review.Logger) (review.Analyzer, error) {
	switch cfg.Provider.Name {
	case "static":
		return static.NewProvider(""), nil
	case "", "anthropic":
		apiKey := cfg.Provider.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key required: set provider.apiKey or ANTHROPIC_API_KEY")
		}

		client := anthropic.NewHTTPClient(apiKey, cfg.Provider.Model)
		client.SetTimeout(llmhttp.ParseTimeout(cfg.Provider.Timeout, 120*time.Second))
		client.SetRetryConfig(llmhttp.BuildRetryConfig(cfg.Retry))

		opts := []anthropic.ProviderOption{
			anthropic.WithLogger(logger),
			anthropic.WithMetrics(llmhttp.NewDefaultMetrics(), llmhttp.NewDefaultPricing()),
		}
		if cfg.Provider.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(cfg.Provider.MaxTokens))
		}
		return anthropic.NewProvider(cfg.Provider.Model, client, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

// orchestratorConfig maps loaded configuration onto the pipeline tunables.
func orchestratorConfig(cfg config.Config) review.Config {
	oc := review.DefaultConfig()

	if cfg.BatchProcessing.MaxFilesPerBatch > 0 {
		oc.MaxFilesPerBatch = cfg.BatchProcessing.MaxFilesPerBatch
	}
	oc.SingleRequestThreshold = cfg.BatchProcessing.SingleRequestThreshold
	if cfg.Provider.TokenLimit > 0 {
		oc.RequestTokenLimit = cfg.Provider.TokenLimit
	}
	if cfg.BatchProcessing.TokenFraction > 0 {
		oc.BatchTokenFraction = cfg.BatchProcessing.TokenFraction
	}
	oc.PrioritizationEnabled = cfg.BatchProcessing.Prioritization

	oc.Execution = execute.Config{
		Parallel:        cfg.BatchProcessing.Parallel.Enabled,
		MaxConcurrent:   cfg.BatchProcessing.Parallel.MaxConcurrentBatches,
		FailureHandling: cfg.BatchProcessing.Parallel.FailureHandling,
		BatchDelay:      time.Duration(cfg.BatchProcessing.BatchDelayMs) * time.Millisecond,
		StaggerDelay:    time.Duration(cfg.BatchProcessing.Parallel.StaggerDelayMs) * time.Millisecond,
		TotalBudget:     cfg.Provider.TokenLimit,
	}

	oc.Dedup = dedup.Config{
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		CommentBatchSize:    cfg.Dedup.CommentBatchSize,
		Semantic:            cfg.Dedup.Enabled && cfg.Dedup.Semantic,
	}

	oc.BotUsername = cfg.GitHub.BotUsername

	return oc
}

// writeReports renders the markdown and JSON reports into the output
// directory.
func writeReports(ctx context.Context, cfg config.Config, req cli.ReviewRequest, result review.Result, logger review.Logger) error {
	outputDir := cfg.Output.Directory
	if outputDir == "" {
		outputDir = "out"
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	now := jsonout.Timestamp

	mdReport := markdown.Report{
		OutputDir:  outputDir,
		Repository: repositoryName(repoDir),
		PRID:       prID(req),
		Model:      cfg.Provider.Model,
		Result:     result,
	}
	mdPath, err := markdown.NewWriter(now).Write(ctx, mdReport)
	if err != nil {
		return fmt.Errorf("writing markdown report failed: %w", err)
	}

	jsonReport := jsonout.Report{
		OutputDir:  outputDir,
		Repository: mdReport.Repository,
		PRID:       mdReport.PRID,
		Model:      mdReport.Model,
		Result:     result,
	}
	jsonPath, err := jsonout.NewWriter(now).Write(ctx, jsonReport)
	if err != nil {
		return fmt.Errorf("writing json report failed: %w", err)
	}

	logger.LogInfo(ctx, "reports written", map[string]interface{}{
		"markdown": mdPath,
		"json":     jsonPath,
	})
	return nil
}

// recordRun persists the run outcome. Persistence failures are logged, not
// fatal: the review already succeeded.
func recordRun(ctx context.Context, cfg config.Config, req cli.ReviewRequest, result review.Result, logger review.Logger) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		logger.LogWarning(ctx, "failed to create store directory", map[string]interface{}{
			"path":  cfg.Store.Path,
			"error": err.Error(),
		})
		return
	}

	db, err := sqlite.NewStore(cfg.Store.Path)
	if err != nil {
		logger.LogWarning(ctx, "failed to open store", map[string]interface{}{
			"path":  cfg.Store.Path,
			"error": err.Error(),
		})
		return
	}
	defer db.Close()

	configHash, err := store.CalculateConfigHash(cfg)
	if err != nil {
		configHash = ""
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	runID, err := storeadapter.NewRecorder(db).Record(ctx, storeadapter.RunInfo{
		PRID:       prID(req),
		Repository: repositoryName(repoDir),
		BaseRef:    req.BaseRef,
		TargetRef:  req.TargetRef,
		Model:      cfg.Provider.Model,
		ConfigHash: configHash,
	}, result)
	if err != nil {
		logger.LogWarning(ctx, "failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	logger.LogInfo(ctx, "run recorded", map[string]interface{}{
		"run_id": runID,
	})
}

// prID names the run: the PR number when known, the target ref otherwise.
func prID(req cli.ReviewRequest) string {
	if req.PRNumber > 0 {
		return strconv.Itoa(req.PRNumber)
	}
	if req.TargetRef != "" {
		return req.TargetRef
	}
	return "local"
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}
