// Package barrier provides a conjunctive completion barrier: a single
// waiter blocks until every one of a fixed set of slots has been signaled.
package barrier

import (
	"context"
	"fmt"
	"sync"
)

// CompletionBarrier releases once all of its slots have fired. Each slot can
// fire at most once; repeated signals of the same slot are ignored, so a
// slot can never be counted twice toward release.
//
// A CompletionBarrier is safe for concurrent use. The zero value is not
// usable; construct one with New.
type CompletionBarrier struct {
	mu      sync.Mutex
	fired   []bool
	pending int
	done    chan struct{}
}

// New returns a barrier waiting on n slots numbered 1..n. A barrier for
// zero slots is already released.
func New(n int) *CompletionBarrier {
	if n < 0 {
		n = 0
	}
	b := &CompletionBarrier{
		fired:   make([]bool, n),
		pending: n,
		done:    make(chan struct{}),
	}
	if n == 0 {
		close(b.done)
	}
	return b
}

// Signal marks slot i (1-based) as fired. It reports whether this call was
// the first signal for the slot. Signaling an out-of-range slot panics,
// since it indicates a bookkeeping error in the caller.
func (b *CompletionBarrier) Signal(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 1 || i > len(b.fired) {
		panic(fmt.Sprintf("barrier: slot %d out of range [1, %d]", i, len(b.fired)))
	}
	if b.fired[i-1] {
		return false
	}
	b.fired[i-1] = true
	b.pending--
	if b.pending == 0 {
		close(b.done)
	}
	return true
}

// Wait blocks until every slot has fired or ctx ends. It returns nil only
// when the barrier has released; otherwise it returns ctx.Err().
func (b *CompletionBarrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	default:
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the barrier releases.
func (b *CompletionBarrier) Done() <-chan struct{} {
	return b.done
}

// Pending reports how many slots have not fired yet.
func (b *CompletionBarrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Size returns the number of slots the barrier was built for.
func (b *CompletionBarrier) Size() int {
	return len(b.fired)
}
