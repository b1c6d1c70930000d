package main

import (
	"testing"

	"github.com/juspay/yama-sub000/internal/adapter/cli"
	"github.com/juspay/yama-sub000/internal/adapter/llm/static"
	"github.com/juspay/yama-sub000/internal/config"
)

func TestPRID(t *testing.T) {
	tests := []struct {
		name string
		req  cli.ReviewRequest
		want string
	}{
		{
			name: "pr number wins",
			req:  cli.ReviewRequest{PRNumber: 42, TargetRef: "feature/x"},
			want: "42",
		},
		{
			name: "target ref when no pr number",
			req:  cli.ReviewRequest{TargetRef: "feature/x"},
			want: "feature/x",
		},
		{
			name: "local fallback",
			req:  cli.ReviewRequest{},
			want: "local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prID(tt.req); got != tt.want {
				t.Errorf("prID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlagOverlay(t *testing.T) {
	tests := []struct {
		name       string
		req        cli.ReviewRequest
		wantRepo   string
		wantOutput string
	}{
		{
			name:       "explicit values carried over",
			req:        cli.ReviewRequest{RepoDir: "/tmp/repo", OutputDir: "reports"},
			wantRepo:   "/tmp/repo",
			wantOutput: "reports",
		},
		{
			name:       "flag defaults not forced into overlay",
			req:        cli.ReviewRequest{RepoDir: ".", OutputDir: "out"},
			wantRepo:   "",
			wantOutput: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay := flagOverlay(tt.req)
			if overlay.Git.RepositoryDir != tt.wantRepo {
				t.Errorf("RepositoryDir = %q, want %q", overlay.Git.RepositoryDir, tt.wantRepo)
			}
			if overlay.Output.Directory != tt.wantOutput {
				t.Errorf("Output.Directory = %q, want %q", overlay.Output.Directory, tt.wantOutput)
			}
		})
	}
}

func TestFlagOverlayWinsOverFileConfig(t *testing.T) {
	fileCfg := config.Config{
		Git:    config.GitConfig{RepositoryDir: "/srv/checkout"},
		Output: config.OutputConfig{Directory: "file-out"},
	}
	merged := config.Merge(fileCfg, flagOverlay(cli.ReviewRequest{
		RepoDir:   "/tmp/override",
		OutputDir: "flag-out",
	}))

	if merged.Git.RepositoryDir != "/tmp/override" {
		t.Errorf("RepositoryDir = %q, want flag override", merged.Git.RepositoryDir)
	}
	if merged.Output.Directory != "flag-out" {
		t.Errorf("Output.Directory = %q, want flag override", merged.Output.Directory)
	}
}

func TestBuildAnalyzer(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantErr  bool
		wantType string // "static" or "anthropic"
	}{
		{
			name:     "static provider needs no key",
			cfg:      config.Config{Provider: config.ProviderConfig{Name: "static"}},
			wantType: "static",
		},
		{
			name: "anthropic with key",
			cfg: config.Config{Provider: config.ProviderConfig{
				Name:   "anthropic",
				Model:  "claude-sonnet-4-5",
				APIKey: "test-key",
			}},
			wantType: "anthropic",
		},
		{
			name:    "anthropic without key fails",
			cfg:     config.Config{Provider: config.ProviderConfig{Name: "anthropic"}},
			wantErr: true,
		},
		{
			name:    "unknown provider fails",
			cfg:     config.Config{Provider: config.ProviderConfig{Name: "carrier-pigeon"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", "")

			analyzer, err := buildAnalyzer(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantType == "static" {
				if _, ok := analyzer.(*static.Provider); !ok {
					t.Errorf("analyzer = %T, want *static.Provider", analyzer)
				}
			}
		})
	}
}

func TestOrchestratorConfig(t *testing.T) {
	cfg := config.Config{
		Provider: config.ProviderConfig{TokenLimit: 50000},
		BatchProcessing: config.BatchConfig{
			MaxFilesPerBatch:       4,
			SingleRequestThreshold: 2,
			TokenFraction:          0.5,
			Prioritization:         true,
			BatchDelayMs:           250,
			Parallel: config.ParallelConfig{
				Enabled:              true,
				MaxConcurrentBatches: 2,
				FailureHandling:      "stop-all",
				StaggerDelayMs:       100,
			},
		},
		Dedup: config.DedupConfig{
			Enabled:             true,
			Semantic:            true,
			SimilarityThreshold: 90,
			CommentBatchSize:    10,
		},
		GitHub: config.GitHubConfig{BotUsername: "review-bot"},
	}

	oc := orchestratorConfig(cfg)

	if oc.MaxFilesPerBatch != 4 {
		t.Errorf("MaxFilesPerBatch = %d, want 4", oc.MaxFilesPerBatch)
	}
	if oc.SingleRequestThreshold != 2 {
		t.Errorf("SingleRequestThreshold = %d, want 2", oc.SingleRequestThreshold)
	}
	if oc.RequestTokenLimit != 50000 {
		t.Errorf("RequestTokenLimit = %d, want 50000", oc.RequestTokenLimit)
	}
	if oc.BatchTokenFraction != 0.5 {
		t.Errorf("BatchTokenFraction = %v, want 0.5", oc.BatchTokenFraction)
	}
	if !oc.Execution.Parallel || oc.Execution.MaxConcurrent != 2 {
		t.Errorf("Execution = %+v, want parallel with 2 concurrent", oc.Execution)
	}
	if oc.Execution.FailureHandling != "stop-all" {
		t.Errorf("FailureHandling = %q, want stop-all", oc.Execution.FailureHandling)
	}
	if oc.Dedup.SimilarityThreshold != 90 || oc.Dedup.CommentBatchSize != 10 {
		t.Errorf("Dedup = %+v, want threshold 90 batch 10", oc.Dedup)
	}
	if !oc.Dedup.Semantic {
		t.Error("Dedup.Semantic = false, want true")
	}
	if oc.BotUsername != "review-bot" {
		t.Errorf("BotUsername = %q, want review-bot", oc.BotUsername)
	}
}

func TestOrchestratorConfigDedupDisabled(t *testing.T) {
	cfg := config.Config{
		Dedup: config.DedupConfig{Enabled: false, Semantic: true},
	}
	oc := orchestratorConfig(cfg)
	if oc.Dedup.Semantic {
		t.Error("semantic stage should be off when dedup is disabled")
	}
}

func TestRepositoryName(t *testing.T) {
	if got := repositoryName("/srv/checkouts/acme-widgets"); got != "acme-widgets" {
		t.Errorf("repositoryName = %q, want acme-widgets", got)
	}
}
