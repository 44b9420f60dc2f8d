package stream

import (
	"sync"

	"github.com/google/uuid"
)

// FromSlice returns a publisher that emits the given values in order, gated
// by demand, then completes. Each Subscribe call starts an independent
// subscription with its own position and demand accounting.
func FromSlice[T any](values []T) Publisher[T] {
	return &slicePublisher[T]{values: values}
}

// Just returns a publisher emitting exactly the listed values.
func Just[T any](values ...T) Publisher[T] {
	return FromSlice(values)
}

type slicePublisher[T any] struct {
	values []T
}

func (p *slicePublisher[T]) Subscribe(s Subscriber[T]) {
	if s == nil {
		violation("Subscribe with nil subscriber")
	}
	sub := &sliceSubscription[T]{
		id:         uuid.New(),
		values:     p.values,
		subscriber: s,
	}
	s.OnSubscribe(sub)
}

// sliceSubscription delivers values strictly against outstanding demand.
// Emission happens inside Request; a reentrant Request from the subscriber's
// own OnNext folds its demand into the already-running emit loop instead of
// recursing.
type sliceSubscription[T any] struct {
	id         uuid.UUID
	mu         sync.Mutex
	values     []T
	next       int
	demand     Demand
	subscriber Subscriber[T]
	emitting   bool
	done       bool
}

// ID returns the unique identity of this subscription.
func (s *sliceSubscription[T]) ID() string {
	return s.id.String()
}

func (s *sliceSubscription[T]) Request(d Demand) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.demand = s.demand.Add(d)
	if s.emitting {
		// Nested call from OnNext; the outer loop sees the new demand.
		s.mu.Unlock()
		return
	}
	s.emitting = true

	for !s.done && s.demand.Positive() && s.next < len(s.values) {
		value := s.values[s.next]
		s.next++
		s.demand = s.demand.Sub(Exactly(1))
		subscriber := s.subscriber
		s.mu.Unlock()
		granted := subscriber.OnNext(value)
		s.mu.Lock()
		s.demand = s.demand.Add(granted)
	}

	if !s.done && s.next == len(s.values) {
		s.done = true
		subscriber := s.subscriber
		s.mu.Unlock()
		subscriber.OnComplete(nil)
		s.mu.Lock()
	}

	s.emitting = false
	s.mu.Unlock()
}

func (s *sliceSubscription[T]) Cancel() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
}
