// Package track defines the interface for in-run idempotency tracking.
//
// A Tracker is scoped to a single pipeline run. It records which (goal,
// participant) pairs this run has already verified so the orchestrator never
// submits a second verification within the same invocation. It is never
// persisted or shared across runs; cross-run idempotency comes from re-reading
// ledger state before every write.
package track

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Tracker records seen keys to ensure at-most-once action within a run.
type Tracker interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing it to be retried. Used when an action
	// was marked but the ledger write behind it failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the canonical tracker key for a goal participant.
func Key(goalID uint64, addr string) string {
	return fmt.Sprintf("%d|%s", goalID, addr)
}

// inMemoryTracker implements Tracker with a mutex-guarded set.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryTracker creates a run-scoped tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		seen: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (t *inMemoryTracker) SeenAndRecord(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[key]; ok {
		return true
	}

	// At capacity we refuse to record rather than evict: forgetting a mark
	// could allow a duplicate action, while an unrecorded new key only costs
	// one extra ledger read.
	if t.maxSize > 0 && len(t.seen) >= t.maxSize {
		return false
	}

	t.seen[key] = struct{}{}
	t.size.Store(int64(len(t.seen)))
	return false
}

// Unrecord removes a key from the seen set.
func (t *inMemoryTracker) Unrecord(_ context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.seen, key)
	t.size.Store(int64(len(t.seen)))
}

// Size returns the current number of recorded keys.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
