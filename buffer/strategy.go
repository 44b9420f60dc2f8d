package buffer

import (
	"github.com/c360/pushstream/errors"
	"github.com/c360/pushstream/stream"
)

// PrefetchStrategy controls how much demand the buffer requests from
// upstream when it receives its upstream subscription.
type PrefetchStrategy int

const (
	// KeepFull requests demand equal to the buffer capacity up front and
	// tops the queue back up as values drain downstream.
	KeepFull PrefetchStrategy = iota

	// ByRequest requests Unlimited demand up front: the queue, not upstream
	// demand, is the throttle.
	ByRequest
)

// String returns a human-readable representation of the prefetch strategy.
func (p PrefetchStrategy) String() string {
	switch p {
	case KeepFull:
		return "KeepFull"
	case ByRequest:
		return "ByRequest"
	default:
		return "Unknown"
	}
}

// initialDemand is the single upstream request issued at subscribe time.
func (p PrefetchStrategy) initialDemand(size int) stream.Demand {
	if p == ByRequest {
		return stream.Unlimited
	}
	return stream.Exactly(size)
}

type overflowKind int

const (
	overflowDropNewest overflowKind = iota
	overflowDropOldest
	overflowErrorOnFull
)

// OverflowStrategy defines how the buffer behaves when a value arrives while
// the queue is at capacity.
type OverflowStrategy struct {
	kind   overflowKind
	onFull func() error
}

// DropNewest discards the incoming value; the queue is unchanged.
var DropNewest = OverflowStrategy{kind: overflowDropNewest}

// DropOldest evicts the oldest queued value to make room for the incoming one.
var DropOldest = OverflowStrategy{kind: overflowDropOldest}

// ErrorOnFull synthesizes a failure via the factory on the first overflow,
// cancels the upstream subscription, and delivers the failure downstream as
// the terminal completion once the queue drains. The factory is invoked
// lazily, only when overflow actually occurs. A nil factory yields
// errors.ErrBufferOverflow.
func ErrorOnFull(factory func() error) OverflowStrategy {
	if factory == nil {
		factory = func() error { return errors.ErrBufferOverflow }
	}
	return OverflowStrategy{kind: overflowErrorOnFull, onFull: factory}
}

// String returns a human-readable representation of the overflow strategy.
func (o OverflowStrategy) String() string {
	switch o.kind {
	case overflowDropNewest:
		return "DropNewest"
	case overflowDropOldest:
		return "DropOldest"
	case overflowErrorOnFull:
		return "ErrorOnFull"
	default:
		return "Unknown"
	}
}
