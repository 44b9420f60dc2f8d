package buffer

import (
	"log/slog"
	"sync"

	"github.com/c360/pushstream/errors"
	"github.com/c360/pushstream/stream"
)

// Buffer is a publisher that interposes a bounded FIFO queue between an
// upstream publisher and each downstream subscriber. Upstream pushes are
// absorbed into the queue; downstream receives values only as fast as its
// own demand allows. The prefetch strategy governs how much demand the
// buffer offers upstream, and the overflow strategy governs what happens
// when a value arrives while the queue is at capacity.
//
// Each call to Subscribe creates an independent queue and an independent
// upstream subscription.
type Buffer[T any] struct {
	upstream stream.Publisher[T]
	size     int
	prefetch PrefetchStrategy
	whenFull OverflowStrategy

	opts    *bufferOptions[T]
	stats   *Statistics
	metrics *bufferMetrics
}

// New creates a buffer over upstream with the given queue capacity,
// prefetch strategy, and overflow strategy.
//
// A size of 0 is legal: every arriving value is an overflow, so the buffer
// degenerates to pure policy (drop everything, or fail on the first value).
func New[T any](upstream stream.Publisher[T], size int, prefetch PrefetchStrategy, whenFull OverflowStrategy, options ...Option[T]) (*Buffer[T], error) {
	if upstream == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Buffer", "New", "validate upstream")
	}
	if size < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Buffer", "New", "validate size")
	}

	opts := applyOptions(options...)

	b := &Buffer[T]{
		upstream: upstream,
		size:     size,
		prefetch: prefetch,
		whenFull: whenFull,
		opts:     opts,
		stats:    NewStatistics(),
	}

	if opts.metricsReg != nil {
		m, err := newBufferMetrics(opts.metricsReg, opts.metricsName)
		if err != nil {
			return nil, errors.Wrap(err, "Buffer", "New", "register metrics")
		}
		b.metrics = m
	}

	return b, nil
}

// Statistics returns the buffer's lifetime statistics tracker. Statistics
// are shared across all subscriptions to this buffer.
func (b *Buffer[T]) Statistics() *Statistics {
	return b.stats
}

// Subscribe attaches s to the buffer. The buffer subscribes upstream,
// issues its initial prefetch request, and hands s a subscription through
// which it controls delivery. Panics if s is nil.
func (b *Buffer[T]) Subscribe(s stream.Subscriber[T]) {
	if s == nil {
		panic("stream: protocol violation: Subscribe called with nil subscriber")
	}

	in := &inner[T]{
		b:          b,
		downstream: s,
	}
	if b.size > 0 {
		in.ring = make([]T, b.size)
	}

	b.upstream.Subscribe(in)
	s.OnSubscribe(in)
	in.handshakeDone()
}

// terminalState records a pending completion that has not yet been
// delivered downstream. A nil err means success.
type terminalState struct {
	err error
}

// inner is the per-subscription state machine. It is the subscriber the
// buffer presents upstream and the subscription it presents downstream.
//
// All state transitions happen under mu; all calls out to the downstream
// subscriber, the upstream subscription, the overflow factory, and the
// drop callback happen outside it. The draining flag makes the delivery
// loop non-reentrant: a nested Request from inside OnNext folds its demand
// in and returns, leaving the outer loop to deliver.
type inner[T any] struct {
	b          *Buffer[T]
	downstream stream.Subscriber[T]

	mu sync.Mutex

	// Bounded FIFO ring. head is the index of the oldest value, count the
	// number of queued values. Unused when capacity is 0.
	ring  []T
	head  int
	count int

	upstream stream.Subscription
	demand   stream.Demand

	terminal     *terminalState
	terminalSent bool
	upstreamDone bool
	cancelled    bool

	// handshake becomes true once the downstream has received its
	// subscription; nothing is delivered before then.
	handshake bool

	draining   bool
	inOverflow bool
}

// OnSubscribe stores the upstream subscription and issues the single
// prefetch request dictated by the strategy.
func (in *inner[T]) OnSubscribe(sub stream.Subscription) {
	in.mu.Lock()
	if in.cancelled {
		in.mu.Unlock()
		sub.Cancel()
		return
	}
	in.upstream = sub
	in.mu.Unlock()

	initial := in.b.prefetch.initialDemand(in.b.size)
	if initial.Positive() {
		sub.Request(initial)
		if in.b.metrics != nil && !initial.IsUnlimited() {
			in.b.metrics.recordDemand(uint64(initial))
		}
	}
}

// handshakeDone marks the downstream handshake complete and flushes any
// state that accumulated before it (an eager upstream may have pushed
// values, or even completed, from inside OnSubscribe).
func (in *inner[T]) handshakeDone() {
	in.mu.Lock()
	in.handshake = true
	in.mu.Unlock()
	in.drain()
}

// OnNext accepts a value from upstream. The buffer never replenishes
// upstream demand through the OnNext return value; KeepFull top-ups go
// through explicit Request calls as values drain.
func (in *inner[T]) OnNext(value T) stream.Demand {
	in.mu.Lock()

	if in.cancelled {
		in.mu.Unlock()
		return stream.None
	}
	if in.upstreamDone {
		in.mu.Unlock()
		panic("stream: protocol violation: value received after terminal completion")
	}
	if in.terminalSent || in.terminal != nil {
		// Overflow failure already recorded; late values are refused.
		in.mu.Unlock()
		return stream.None
	}

	if in.count < in.b.size {
		in.enqueueLocked(value)
		in.mu.Unlock()
		in.drain()
		return stream.None
	}

	// Queue is full: apply the overflow policy.
	switch in.b.whenFull.kind {
	case overflowDropNewest:
		in.b.stats.Overflow()
		in.b.stats.Drop()
		if in.b.metrics != nil {
			in.b.metrics.recordOverflow()
			in.b.metrics.recordDrop()
		}
		in.logEvent("buffer overflow, dropping newest")
		in.mu.Unlock()
		in.notifyDrop(value)
		in.drain()

	case overflowDropOldest:
		victim := value
		if in.b.size > 0 {
			victim = in.dequeueLocked()
			in.enqueueLocked(value)
		}
		in.b.stats.Overflow()
		in.b.stats.Drop()
		if in.b.metrics != nil {
			in.b.metrics.recordOverflow()
			in.b.metrics.recordDrop()
		}
		in.logEvent("buffer overflow, dropping oldest")
		in.mu.Unlock()
		in.notifyDrop(victim)
		in.drain()

	case overflowErrorOnFull:
		if in.inOverflow {
			// The overflow factory re-entered the pipeline and caused
			// another overflow. The outer handler owns the failure; this
			// value is silently refused.
			in.b.stats.OverflowReentry()
			in.mu.Unlock()
			return stream.None
		}
		in.inOverflow = true
		in.b.stats.Overflow()
		in.b.stats.Drop()
		if in.b.metrics != nil {
			in.b.metrics.recordOverflow()
			in.b.metrics.recordDrop()
		}
		in.logEvent("buffer overflow, failing stream")
		up := in.upstream
		in.upstream = nil
		in.mu.Unlock()

		if up != nil {
			up.Cancel()
		}
		failure := in.b.whenFull.onFull()
		if failure == nil {
			failure = errors.ErrBufferOverflow
		}

		in.mu.Lock()
		in.inOverflow = false
		if in.terminal == nil && !in.terminalSent && !in.cancelled {
			in.terminal = &terminalState{err: failure}
		}
		in.mu.Unlock()
		in.notifyDrop(value)
		in.drain()
	}

	return stream.None
}

// OnComplete records the upstream terminal. Delivery downstream is
// deferred until the queue has drained.
func (in *inner[T]) OnComplete(err error) {
	in.mu.Lock()
	if in.cancelled {
		in.mu.Unlock()
		return
	}
	if in.upstreamDone {
		in.mu.Unlock()
		panic("stream: protocol violation: completion received after terminal completion")
	}
	in.upstreamDone = true
	in.upstream = nil
	if in.terminal == nil && !in.terminalSent {
		in.terminal = &terminalState{err: err}
	}
	in.mu.Unlock()
	in.drain()
}

// Request adds downstream demand and drains. Requests after cancellation
// or after the terminal has been delivered are ignored.
func (in *inner[T]) Request(d stream.Demand) {
	in.mu.Lock()
	if in.cancelled || in.terminalSent {
		in.mu.Unlock()
		return
	}
	in.demand = in.demand.Add(d)
	in.mu.Unlock()
	in.drain()
}

// Cancel tears the subscription down: the upstream subscription is
// cancelled, queued values are released, and no further signals reach the
// downstream. Idempotent.
func (in *inner[T]) Cancel() {
	in.mu.Lock()
	if in.cancelled {
		in.mu.Unlock()
		return
	}
	in.cancelled = true
	up := in.upstream
	in.upstream = nil
	in.clearLocked()
	in.mu.Unlock()

	if up != nil {
		up.Cancel()
	}
}

// drain delivers queued values while downstream demand holds, then the
// pending terminal once the queue is empty. Only one drain runs at a time;
// reentrant calls return immediately and the running loop picks up any
// state they changed.
func (in *inner[T]) drain() {
	in.mu.Lock()
	if in.draining || !in.handshake {
		in.mu.Unlock()
		return
	}
	in.draining = true

	for {
		if in.cancelled || in.terminalSent {
			break
		}

		if in.count > 0 && in.demand.Positive() {
			value := in.dequeueLocked()
			in.demand = in.demand.Sub(stream.Exactly(1))
			in.b.stats.Deliver()
			if in.b.metrics != nil {
				in.b.metrics.recordDeliver(in.count, in.b.size)
			}
			in.mu.Unlock()

			granted := in.downstream.OnNext(value)
			topUp := in.b.prefetch == KeepFull

			in.mu.Lock()
			if granted.Positive() && !in.cancelled {
				in.demand = in.demand.Add(granted)
			}
			if topUp && !in.cancelled {
				up := in.upstream
				if up != nil {
					in.mu.Unlock()
					up.Request(stream.Exactly(1))
					if in.b.metrics != nil {
						in.b.metrics.recordDemand(1)
					}
					in.mu.Lock()
				}
			}
			continue
		}

		if in.count == 0 && in.terminal != nil {
			t := in.terminal
			in.terminal = nil
			in.terminalSent = true
			in.demand = stream.None
			in.draining = false
			in.logEvent("terminal delivered")
			in.mu.Unlock()

			in.downstream.OnComplete(t.err)
			in.b.stats.Complete()
			if in.b.metrics != nil {
				in.b.metrics.recordTerminal(t.err)
			}
			return
		}

		break
	}

	in.draining = false
	in.mu.Unlock()
}

// enqueueLocked appends a value to the ring. Caller holds mu and has
// verified count < capacity.
func (in *inner[T]) enqueueLocked(value T) {
	in.ring[(in.head+in.count)%in.b.size] = value
	in.count++
	in.b.stats.Enqueue()
	in.b.stats.UpdateDepth(int64(in.count))
	if in.b.metrics != nil {
		in.b.metrics.recordEnqueue(in.count, in.b.size)
	}
}

// dequeueLocked removes and returns the oldest value. Caller holds mu and
// has verified count > 0.
func (in *inner[T]) dequeueLocked() T {
	var zero T
	value := in.ring[in.head]
	in.ring[in.head] = zero
	in.head = (in.head + 1) % in.b.size
	in.count--
	in.b.stats.UpdateDepth(int64(in.count))
	return value
}

// clearLocked releases queued values and resets demand. Caller holds mu.
func (in *inner[T]) clearLocked() {
	var zero T
	for i := range in.ring {
		in.ring[i] = zero
	}
	in.head = 0
	in.count = 0
	in.demand = stream.None
	in.terminal = nil
	in.b.stats.UpdateDepth(0)
	if in.b.metrics != nil {
		in.b.metrics.updateDepth(0, in.b.size)
	}
}

// notifyDrop invokes the drop callback, if configured, outside the lock.
func (in *inner[T]) notifyDrop(value T) {
	if cb := in.b.opts.dropCallback; cb != nil {
		cb(value)
	}
}

func (in *inner[T]) logEvent(msg string) {
	if in.b.opts.logger != nil {
		in.b.opts.logger.Debug(msg,
			slog.Int("depth", in.count),
			slog.Int("capacity", in.b.size),
			slog.String("prefetch", in.b.prefetch.String()),
			slog.String("when_full", in.b.whenFull.String()))
	}
}
