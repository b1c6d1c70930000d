package review

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/juspay/yama-sub000/internal/diff"
	"github.com/juspay/yama-sub000/internal/domain"
	"github.com/juspay/yama-sub000/internal/usecase/batch"
	"github.com/juspay/yama-sub000/internal/usecase/dedup"
	"github.com/juspay/yama-sub000/internal/usecase/execute"
	"github.com/juspay/yama-sub000/internal/usecase/prioritize"
)

// ErrNoDiff is returned when a review request carries no diff content.
var ErrNoDiff = errors.New("no diff content to review")

// Analyzer is the outbound port to the model: it takes a rendered prompt and
// returns the provider's free-text response. Parsing and validation of that
// response stay on this side of the port.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Config carries the tunables for a full review run.
type Config struct {
	// SingleRequestThreshold sends the whole change set as one batch when the
	// file count is at or below it. Zero disables the shortcut.
	SingleRequestThreshold int

	MaxFilesPerBatch   int
	RequestTokenLimit  int
	BatchTokenFraction float64

	PrioritizationEnabled bool

	Execution execute.Config
	Dedup     dedup.Config

	// BotUsername identifies this tool's own comments on the platform so they
	// join the duplicate comparison set.
	BotUsername string
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		SingleRequestThreshold: 5,
		MaxFilesPerBatch:       3,
		RequestTokenLimit:      100000,
		BatchTokenFraction:     0.7,
		PrioritizationEnabled:  true,
		Execution: execute.Config{
			Parallel:        true,
			MaxConcurrent:   3,
			FailureHandling: execute.FailureContinue,
		},
		Dedup: dedup.DefaultConfig(),
	}
}

// Request describes one review run.
type Request struct {
	PRID string

	// Diff is the full unified diff; FileDiffs is the pre-split alternative.
	// When both are set FileDiffs wins.
	Diff      string
	FileDiffs map[string]string

	ExistingComments []domain.PlatformComment
}

// RunStats summarizes what a review run did.
type RunStats struct {
	FilesReviewed int
	BatchCount    int
	FailedBatches int

	RawViolations      int
	ParseRejected      int
	DroppedUnlocatable int
	FuzzyRelocated     int

	SeverityCounts map[string]int
	CategoryCounts map[string]int

	Duration time.Duration
}

// Result is the outcome of a review run. Violations is the final
// deduplicated, location-resolved list in pipeline order.
type Result struct {
	Violations []domain.Violation
	Batches    []domain.BatchResult
	Dedup      domain.DeduplicationResult
	Stats      RunStats
}

// Redactor strips secrets from diff text before it leaves the process.
type Redactor interface {
	Redact(input string) (string, error)
}

// Deps are the collaborators the orchestrator drives. Scorer, Logger and
// Redactor may be nil; Estimator falls back to the byte heuristic.
type Deps struct {
	Analyzer  Analyzer
	Scorer    dedup.Scorer
	Estimator prioritize.TokenEstimator
	Logger    Logger
	Redactor  Redactor
}

// Orchestrator wires prioritization, batching, execution, location
// resolution and deduplication into one review pipeline.
type Orchestrator struct {
	deps Deps
	cfg  Config
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	if deps.Estimator == nil {
		deps.Estimator = prioritize.HeuristicEstimator{}
	}
	if cfg.MaxFilesPerBatch < 1 {
		cfg.MaxFilesPerBatch = 1
	}
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Run executes the full pipeline for one request.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	fileDiffs := req.FileDiffs
	if len(fileDiffs) == 0 {
		fileDiffs = diff.SplitByFile(req.Diff)
	}
	if len(fileDiffs) == 0 {
		return Result{}, ErrNoDiff
	}
	fileDiffs = o.redactDiffs(ctx, fileDiffs)

	prioritizer := prioritize.New(nil, o.deps.Estimator, o.cfg.PrioritizationEnabled)
	files := prioritizer.Prioritize(fileDiffs)

	batches := o.buildBatches(files)
	o.logInfo(ctx, "review run planned", map[string]interface{}{
		"pr_id":   req.PRID,
		"files":   len(files),
		"batches": len(batches),
	})

	analyzer := &batchAnalyzer{o: o}
	executor := execute.New(analyzer, o.cfg.Execution, o.deps.Logger)
	results, err := executor.Execute(ctx, batches)
	if err != nil {
		return Result{}, err
	}

	stats := RunStats{
		FilesReviewed:  len(files),
		BatchCount:     len(batches),
		SeverityCounts: map[string]int{},
		CategoryCounts: map[string]int{},
	}

	var raw []domain.Violation
	for _, r := range results {
		if r.Err != nil {
			stats.FailedBatches++
			continue
		}
		raw = append(raw, r.Violations...)
	}
	stats.RawViolations = len(raw)
	stats.ParseRejected = int(analyzer.rejected.Load())

	located := o.resolveLocations(ctx, fileDiffs, raw, &stats)

	engine := dedup.NewEngine(o.deps.Scorer, o.cfg.Dedup, o.deps.Logger)
	toolComments := FilterToolComments(req.ExistingComments, o.cfg.BotUsername)
	dedupResult := engine.Deduplicate(ctx, located, toolComments)

	for _, v := range dedupResult.Unique {
		stats.SeverityCounts[v.Severity]++
		if v.Category != "" {
			stats.CategoryCounts[v.Category]++
		}
	}
	stats.Duration = time.Since(start)

	return Result{
		Violations: dedupResult.Unique,
		Batches:    results,
		Dedup:      dedupResult,
		Stats:      stats,
	}, nil
}

// buildBatches applies the single-request shortcut before handing the file
// list to the greedy builder.
func (o *Orchestrator) buildBatches(files []domain.PrioritizedFile) []domain.FileBatch {
	if o.cfg.SingleRequestThreshold > 0 && len(files) <= o.cfg.SingleRequestThreshold {
		b := domain.FileBatch{Index: 0, Priority: domain.PriorityLow}
		for _, f := range files {
			b.Files = append(b.Files, f)
			b.EstimatedTokens += f.EstimatedTokens
			if f.Priority < b.Priority {
				b.Priority = f.Priority
			}
		}
		return []domain.FileBatch{b}
	}
	return batch.Build(files, batch.Limits{
		MaxFiles:  o.cfg.MaxFilesPerBatch,
		MaxTokens: batch.TokensFromLimit(o.cfg.RequestTokenLimit, o.cfg.BatchTokenFraction),
	})
}

// redactDiffs replaces detected secrets in every file diff before anything
// downstream sees the text. Locating runs against the same redacted diffs, so
// snippets quoted back by the model still resolve. A per-file redaction
// failure keeps the original text rather than dropping the file.
func (o *Orchestrator) redactDiffs(ctx context.Context, fileDiffs map[string]string) map[string]string {
	if o.deps.Redactor == nil {
		return fileDiffs
	}

	redacted := make(map[string]string, len(fileDiffs))
	for path, text := range fileDiffs {
		clean, err := o.deps.Redactor.Redact(text)
		if err != nil {
			o.logWarn(ctx, "redaction failed, using original diff", map[string]interface{}{
				"file": path, "error": err.Error(),
			})
			redacted[path] = text
			continue
		}
		redacted[path] = clean
	}
	return redacted
}

// resolveLocations pins inline violations to exact diff positions. Violations
// whose snippet cannot be found anywhere in the reported file's diff are
// dropped, not posted at a guessed line.
func (o *Orchestrator) resolveLocations(ctx context.Context, fileDiffs map[string]string, violations []domain.Violation, stats *RunStats) []domain.Violation {
	parsed := make(map[string]diff.FileDiff)
	fileFor := func(path string) (diff.FileDiff, bool) {
		canonical, ok := diff.MatchPath(fileDiffs, path)
		if !ok {
			return diff.FileDiff{}, false
		}
		fd, seen := parsed[canonical]
		if !seen {
			fd = diff.Parse(fileDiffs[canonical])
			fd.Path = canonical
			parsed[canonical] = fd
		}
		return fd, true
	}

	kept := make([]domain.Violation, 0, len(violations))
	for _, v := range violations {
		if !v.Inline() {
			kept = append(kept, v)
			continue
		}

		fd, ok := fileFor(v.File)
		if !ok {
			stats.DroppedUnlocatable++
			o.logWarn(ctx, "dropping violation for unknown file", map[string]interface{}{
				"file": v.File, "issue": v.Issue,
			})
			continue
		}
		v.File = fd.Path

		if loc, found := diff.LocateExact(fd, v.CodeSnippet); found {
			v.LineNumber = loc.LineNumber
			v.LineType = loc.Kind.String()
			kept = append(kept, v)
			continue
		}

		if m, found := diff.LocateFuzzy(fd, v.CodeSnippet); found {
			v.CodeSnippet = m.FixedSnippet
			v.LineNumber = m.Location.LineNumber
			v.LineType = m.Location.Kind.String()
			v.SearchContext = &domain.SearchContext{Before: m.Before, After: m.After}
			stats.FuzzyRelocated++
			kept = append(kept, v)
			continue
		}

		stats.DroppedUnlocatable++
		o.logWarn(ctx, "dropping violation with unlocatable snippet", map[string]interface{}{
			"file": v.File, "issue": v.Issue,
		})
	}
	return kept
}

func (o *Orchestrator) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, msg, fields)
	}
}

func (o *Orchestrator) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, msg, fields)
	}
}

// batchAnalyzer adapts the raw text Analyzer port to the executor's
// batch-shaped port: render prompt, call the model, parse the response.
// rejected accumulates malformed response entries across concurrent batches.
type batchAnalyzer struct {
	o        *Orchestrator
	rejected atomic.Int64
}

func (a *batchAnalyzer) AnalyzeBatch(ctx context.Context, b domain.FileBatch) ([]domain.Violation, error) {
	prompt := BuildBatchPrompt(b)
	raw, err := a.o.deps.Analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed := ParseAnalysisResponse(raw)
	if parsed.Invalid > 0 {
		a.rejected.Add(int64(parsed.Invalid))
		a.o.logWarn(ctx, "discarded malformed violations from response", map[string]interface{}{
			"batch": b.Index, "invalid": parsed.Invalid,
		})
	}
	return parsed.Violations, nil
}
