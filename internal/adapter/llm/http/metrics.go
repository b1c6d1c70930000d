package http

import (
	"sync"
	"time"
)

// Metrics aggregates API call statistics across a run.
type Metrics interface {
	// RecordCall records one completed API call.
	RecordCall(provider, model string, duration time.Duration, tokensIn, tokensOut int, cost float64)

	// RecordError records a failed API call.
	RecordError(provider, model string, errType ErrorType)

	// GetStats returns a snapshot of current statistics.
	GetStats() Stats
}

// Stats contains aggregate statistics.
type Stats struct {
	TotalRequests  int
	TotalTokensIn  int
	TotalTokensOut int
	TotalCost      float64
	TotalDuration  time.Duration
	ErrorCount     int
	ByProvider     map[string]ProviderStats
}

// ProviderStats contains per-provider statistics.
type ProviderStats struct {
	Requests  int
	TokensIn  int
	TokensOut int
	Cost      float64
	Duration  time.Duration
	Errors    int
}

// DefaultMetrics is an in-memory Metrics implementation, safe for use from
// concurrently executing batches.
type DefaultMetrics struct {
	mu    sync.RWMutex
	stats Stats
}

func NewDefaultMetrics() *DefaultMetrics {
	return &DefaultMetrics{
		stats: Stats{ByProvider: make(map[string]ProviderStats)},
	}
}

func (m *DefaultMetrics) RecordCall(provider, model string, duration time.Duration, tokensIn, tokensOut int, cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.TotalRequests++
	m.stats.TotalDuration += duration
	m.stats.TotalTokensIn += tokensIn
	m.stats.TotalTokensOut += tokensOut
	m.stats.TotalCost += cost

	ps := m.stats.ByProvider[provider]
	ps.Requests++
	ps.Duration += duration
	ps.TokensIn += tokensIn
	ps.TokensOut += tokensOut
	ps.Cost += cost
	m.stats.ByProvider[provider] = ps
}

func (m *DefaultMetrics) RecordError(provider, model string, errType ErrorType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.ErrorCount++

	ps := m.stats.ByProvider[provider]
	ps.Errors++
	m.stats.ByProvider[provider] = ps
}

// GetStats returns a copy so callers never observe a torn update.
func (m *DefaultMetrics) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statsCopy := m.stats
	statsCopy.ByProvider = make(map[string]ProviderStats, len(m.stats.ByProvider))
	for k, v := range m.stats.ByProvider {
		statsCopy.ByProvider[k] = v
	}
	return statsCopy
}
