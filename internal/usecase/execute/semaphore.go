// Package execute runs analysis batches under bounded concurrency and a
// shared token budget.
package execute

import "context"

// Semaphore is a counting semaphore backed by a buffered channel.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a semaphore with n permits. n is clamped to at least 1.
func NewSemaphore(n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{permits: make(chan struct{}, n)}
}

// Acquire blocks until a permit is available or the context is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit. Releasing more than was acquired panics.
func (s *Semaphore) Release() {
	select {
	case <-s.permits:
	default:
		panic("execute: semaphore released without acquire")
	}
}

// InUse returns the number of currently held permits.
func (s *Semaphore) InUse() int {
	return len(s.permits)
}
