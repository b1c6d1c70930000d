package execute

import "sync"

// TokenBudget is a shared ledger of AI-provider tokens available to
// concurrently running batches. All mutations are guarded by one mutex so the
// remaining counter can never be over-allocated by racing callers.
type TokenBudget struct {
	mu          sync.Mutex
	total       int
	remaining   int
	allocations map[int]int
}

// NewTokenBudget creates a ledger with the given total budget. A non-positive
// total means unlimited: every allocation succeeds.
func NewTokenBudget(total int) *TokenBudget {
	return &TokenBudget{
		total:       total,
		remaining:   total,
		allocations: make(map[int]int),
	}
}

// Allocate atomically reserves amount tokens for the batch. It returns false
// without reserving anything when the remaining budget is insufficient.
func (b *TokenBudget) Allocate(batchIndex, amount int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.total <= 0 {
		return true
	}
	if amount > b.remaining {
		return false
	}
	b.remaining -= amount
	b.allocations[batchIndex] += amount
	return true
}

// Release returns the batch's reservation to the pool. Releasing a batch
// that holds no reservation is a no-op.
func (b *TokenBudget) Release(batchIndex int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining += b.allocations[batchIndex]
	delete(b.allocations, batchIndex)
}

// Remaining returns the unreserved budget.
func (b *TokenBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Allocated returns the sum of live reservations.
func (b *TokenBudget) Allocated() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total - b.remaining
}

// Total returns the configured total budget.
func (b *TokenBudget) Total() int {
	return b.total
}
