package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks buffer behavior over its lifetime. It is always
// collected; Prometheus export is a separate, optional concern.
type Statistics struct {
	// Atomic counters for thread-safe updates
	enqueued          int64
	delivered         int64
	dropped           int64
	overflows         int64
	overflowReentries int64
	completions       int64

	// Protected by mutex
	mu           sync.RWMutex
	startTime    time.Time
	currentDepth int64
	maxDepth     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Enqueue records a value accepted into the queue.
func (s *Statistics) Enqueue() {
	atomic.AddInt64(&s.enqueued, 1)
}

// Deliver records a value delivered downstream.
func (s *Statistics) Deliver() {
	atomic.AddInt64(&s.delivered, 1)
}

// Drop records a value discarded by an overflow policy.
func (s *Statistics) Drop() {
	atomic.AddInt64(&s.dropped, 1)
}

// Overflow records an overflow event (a value arriving at a full queue).
func (s *Statistics) Overflow() {
	atomic.AddInt64(&s.overflows, 1)
}

// OverflowReentry records a nested re-entry into the overflow handler that
// was short-circuited by the recursion guard.
func (s *Statistics) OverflowReentry() {
	atomic.AddInt64(&s.overflowReentries, 1)
}

// Complete records a terminal completion delivered downstream.
func (s *Statistics) Complete() {
	atomic.AddInt64(&s.completions, 1)
}

// UpdateDepth updates the current queue depth.
func (s *Statistics) UpdateDepth(depth int64) {
	s.mu.Lock()
	s.currentDepth = depth
	if depth > s.maxDepth {
		s.maxDepth = depth
	}
	s.mu.Unlock()
}

// Enqueued returns the total number of values accepted into the queue.
func (s *Statistics) Enqueued() int64 {
	return atomic.LoadInt64(&s.enqueued)
}

// Delivered returns the total number of values delivered downstream.
func (s *Statistics) Delivered() int64 {
	return atomic.LoadInt64(&s.delivered)
}

// Dropped returns the total number of values discarded by overflow policies.
func (s *Statistics) Dropped() int64 {
	return atomic.LoadInt64(&s.dropped)
}

// Overflows returns the total number of overflow events.
func (s *Statistics) Overflows() int64 {
	return atomic.LoadInt64(&s.overflows)
}

// OverflowReentries returns the number of guarded nested overflow re-entries.
func (s *Statistics) OverflowReentries() int64 {
	return atomic.LoadInt64(&s.overflowReentries)
}

// Completions returns the number of terminal completions delivered.
func (s *Statistics) Completions() int64 {
	return atomic.LoadInt64(&s.completions)
}

// CurrentDepth returns the current number of queued values.
func (s *Statistics) CurrentDepth() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDepth
}

// MaxDepth returns the deepest the queue has been.
func (s *Statistics) MaxDepth() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxDepth
}

// Uptime returns the time elapsed since the statistics tracker was created.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
