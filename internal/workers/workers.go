// SPDX-License-Identifier: Apache-2.0

// Package workers bounds the number of concurrent CPU-heavy crypto
// operations so that RSA wrapping and AEAD sealing cannot starve the
// request-handling goroutines.
package workers

import (
	"context"
	"runtime"
)

// Pool is a bounded execution slot pool. Do acquires a slot, runs the task
// on the calling goroutine, and releases the slot when the task returns.
type Pool struct {
	slots chan struct{}
}

// NewPool constructs a pool with the given number of slots. A size of zero
// or less falls back to [runtime.NumCPU].
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the number of slots in the pool.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do runs task once a slot is free. When the context is cancelled before a
// slot becomes available, the task is not run and the context error is
// returned.
func (p *Pool) Do(ctx context.Context, task func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	return task()
}
