package execute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/juspay/yama-sub000/internal/domain"
)

// Failure handling policies for parallel execution.
const (
	FailureContinue = "continue"
	FailureStopAll  = "stop-all"
)

// ErrInsufficientBudget marks a batch that could not reserve tokens.
var ErrInsufficientBudget = errors.New("insufficient token budget")

// BatchAnalyzer is the outbound port the executor drives each batch through.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, batch domain.FileBatch) ([]domain.Violation, error)
}

// Logger receives executor warnings and progress information.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Config controls batch execution behavior.
type Config struct {
	Parallel        bool
	MaxConcurrent   int           // Upper bound on simultaneously in-flight batches
	FailureHandling string        // FailureContinue or FailureStopAll
	BatchDelay      time.Duration // Inter-batch delay in serial mode
	StaggerDelay    time.Duration // Launch spacing in parallel mode
	TotalBudget     int           // Shared token budget across in-flight batches
}

// Executor runs batches through the analyzer port.
type Executor struct {
	analyzer BatchAnalyzer
	cfg      Config
	logger   Logger
}

// New creates an Executor. logger may be nil.
func New(analyzer BatchAnalyzer, cfg Config, logger Logger) *Executor {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.FailureHandling == "" {
		cfg.FailureHandling = FailureContinue
	}
	return &Executor{analyzer: analyzer, cfg: cfg, logger: logger}
}

// Execute runs all batches and returns one result per batch, indexed by batch
// order regardless of completion order. Under the continue policy failed
// batches carry their error in the result and err is nil; under stop-all the
// first failure is returned and remaining work is cancelled best-effort.
func (e *Executor) Execute(ctx context.Context, batches []domain.FileBatch) ([]domain.BatchResult, error) {
	if len(batches) == 0 {
		return nil, nil
	}
	if !e.cfg.Parallel || len(batches) == 1 {
		return e.executeSerial(ctx, batches)
	}
	return e.executeParallel(ctx, batches)
}

func (e *Executor) executeSerial(ctx context.Context, batches []domain.FileBatch) ([]domain.BatchResult, error) {
	budget := NewTokenBudget(e.cfg.TotalBudget)
	results := make([]domain.BatchResult, len(batches))

	for i, b := range batches {
		if i > 0 && e.cfg.BatchDelay > 0 {
			select {
			case <-time.After(e.cfg.BatchDelay):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}

		results[i] = e.runBatch(ctx, b, budget)
		if results[i].Err != nil && e.cfg.FailureHandling == FailureStopAll {
			return results, fmt.Errorf("batch %d failed: %w", b.Index, results[i].Err)
		}
	}
	return results, nil
}

func (e *Executor) executeParallel(ctx context.Context, batches []domain.FileBatch) ([]domain.BatchResult, error) {
	budget := NewTokenBudget(e.cfg.TotalBudget)
	sem := NewSemaphore(e.concurrencyBound(batches))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]domain.BatchResult, len(batches))
	var wg sync.WaitGroup

	var failMu sync.Mutex
	var firstFailure error

	for i, b := range batches {
		if i > 0 && e.cfg.StaggerDelay > 0 {
			select {
			case <-time.After(e.cfg.StaggerDelay):
			case <-runCtx.Done():
			}
		}

		wg.Add(1)
		go func(slot int, b domain.FileBatch) {
			defer wg.Done()

			if err := sem.Acquire(runCtx); err != nil {
				results[slot] = domain.BatchResult{BatchIndex: b.Index, Files: b.Paths(), Err: err}
				return
			}
			defer sem.Release()

			results[slot] = e.runBatch(runCtx, b, budget)

			if results[slot].Err != nil && e.cfg.FailureHandling == FailureStopAll {
				failMu.Lock()
				if firstFailure == nil {
					firstFailure = fmt.Errorf("batch %d failed: %w", b.Index, results[slot].Err)
				}
				failMu.Unlock()
				cancel()
			}
		}(i, b)
	}

	wg.Wait()

	if e.cfg.FailureHandling == FailureStopAll && firstFailure != nil {
		return results, firstFailure
	}
	return results, nil
}

// runBatch reserves the batch's token estimate, invokes the analyzer, and
// always returns the reservation afterwards.
func (e *Executor) runBatch(ctx context.Context, b domain.FileBatch, budget *TokenBudget) domain.BatchResult {
	result := domain.BatchResult{BatchIndex: b.Index, Files: b.Paths()}

	if !budget.Allocate(b.Index, b.EstimatedTokens) {
		result.Err = fmt.Errorf("%w: batch %d needs %d tokens, %d remaining",
			ErrInsufficientBudget, b.Index, b.EstimatedTokens, budget.Remaining())
		if e.logger != nil {
			e.logger.LogWarning(ctx, "batch skipped: insufficient token budget", map[string]interface{}{
				"batchIndex": b.Index,
				"needed":     b.EstimatedTokens,
				"remaining":  budget.Remaining(),
			})
		}
		return result
	}
	defer budget.Release(b.Index)

	start := time.Now()
	violations, err := e.analyzer.AnalyzeBatch(ctx, b)
	result.ProcessingTime = time.Since(start)

	if err != nil {
		result.Err = err
		return result
	}
	result.Violations = violations

	if e.logger != nil {
		e.logger.LogInfo(ctx, "batch analyzed", map[string]interface{}{
			"batchIndex": b.Index,
			"files":      len(b.Files),
			"violations": len(violations),
			"elapsedMs":  result.ProcessingTime.Milliseconds(),
		})
	}
	return result
}

// concurrencyBound limits parallelism so that the worst-case simultaneous
// token draw of average-sized batches stays inside the total budget.
func (e *Executor) concurrencyBound(batches []domain.FileBatch) int {
	bound := e.cfg.MaxConcurrent
	if e.cfg.TotalBudget > 0 {
		total := 0
		for _, b := range batches {
			total += b.EstimatedTokens
		}
		if avg := total / len(batches); avg > 0 {
			if byBudget := e.cfg.TotalBudget / avg; byBudget < bound {
				bound = byBudget
			}
		}
	}
	if bound < 1 {
		bound = 1
	}
	return bound
}
