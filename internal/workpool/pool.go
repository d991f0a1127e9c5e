// Package workpool bounds concurrent scoring tasks with a weighted semaphore.
package workpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool limits how many scoring tasks run at once. All task dispatch within
// a stage goes through one shared Pool, so the stage's concurrency never
// exceeds the configured worker budget.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool that allows at most limit concurrent tasks.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot. Blocks while all
// slots are busy; returns ctx.Err() if the context is cancelled first.
// A nil pool runs fn directly.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
