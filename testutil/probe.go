// Package testutil provides stream probes with ZERO domain concepts.
// Probes record every signal crossing them so tests can assert on exact
// sequences of requests, deliveries, and completions.
package testutil

import (
	"sync"

	"github.com/c360/pushstream/stream"
)

// ScriptedPublisher is a publisher driven entirely by the test: the test
// pushes values and terminals through it by hand and inspects the demand
// requests its subscriber made.
// This is core infrastructure - no domain concepts.
type ScriptedPublisher[T any] struct {
	mu sync.Mutex

	subscriber stream.Subscriber[T]

	// Call records for verification
	Requests    []stream.Demand
	CancelCalls int
}

// NewScriptedPublisher creates a publisher awaiting a single subscriber.
func NewScriptedPublisher[T any]() *ScriptedPublisher[T] {
	return &ScriptedPublisher[T]{}
}

// Subscribe stores the subscriber and hands it a subscription that records
// Request and Cancel calls.
func (p *ScriptedPublisher[T]) Subscribe(s stream.Subscriber[T]) {
	p.mu.Lock()
	p.subscriber = s
	p.mu.Unlock()
	s.OnSubscribe(&scriptedSubscription[T]{p: p})
}

// Push sends a value to the subscriber and returns the demand the
// subscriber granted back.
func (p *ScriptedPublisher[T]) Push(value T) stream.Demand {
	p.mu.Lock()
	s := p.subscriber
	p.mu.Unlock()
	return s.OnNext(value)
}

// Complete sends the terminal signal to the subscriber. A nil err means
// successful completion.
func (p *ScriptedPublisher[T]) Complete(err error) {
	p.mu.Lock()
	s := p.subscriber
	p.mu.Unlock()
	s.OnComplete(err)
}

// Requested returns a copy of the demand requests received so far.
func (p *ScriptedPublisher[T]) Requested() []stream.Demand {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]stream.Demand, len(p.Requests))
	copy(out, p.Requests)
	return out
}

// TotalRequested folds the recorded requests into a single demand.
func (p *ScriptedPublisher[T]) TotalRequested() stream.Demand {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := stream.None
	for _, d := range p.Requests {
		total = total.Add(d)
	}
	return total
}

// Cancelled reports whether the subscriber cancelled its subscription.
func (p *ScriptedPublisher[T]) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CancelCalls > 0
}

// CancelCount returns how many times Cancel was called.
func (p *ScriptedPublisher[T]) CancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CancelCalls
}

type scriptedSubscription[T any] struct {
	p *ScriptedPublisher[T]
}

func (s *scriptedSubscription[T]) Request(d stream.Demand) {
	s.p.mu.Lock()
	s.p.Requests = append(s.p.Requests, d)
	s.p.mu.Unlock()
}

func (s *scriptedSubscription[T]) Cancel() {
	s.p.mu.Lock()
	s.p.CancelCalls++
	s.p.mu.Unlock()
}

// RecordingSubscriber records every signal it receives and lets the test
// script its demand responses.
type RecordingSubscriber[T any] struct {
	mu sync.Mutex

	// InitialDemand is requested when the subscription arrives, if positive.
	InitialDemand stream.Demand

	// PerValue is returned from OnNext as replenished demand.
	PerValue stream.Demand

	// OnNextFunc, when set, runs inside OnNext before the default
	// recording. Used to exercise reentrant Request and Cancel.
	OnNextFunc func(value T)

	subscription stream.Subscription

	// Signal records for verification
	Values        []T
	CompleteCalls int
	CompleteErr   error
}

// NewRecordingSubscriber creates a subscriber that requests initial demand
// up front and replenishes perValue after each delivery.
func NewRecordingSubscriber[T any](initial, perValue stream.Demand) *RecordingSubscriber[T] {
	return &RecordingSubscriber[T]{
		InitialDemand: initial,
		PerValue:      perValue,
	}
}

// OnSubscribe stores the subscription and issues the initial request.
func (r *RecordingSubscriber[T]) OnSubscribe(sub stream.Subscription) {
	r.mu.Lock()
	r.subscription = sub
	initial := r.InitialDemand
	r.mu.Unlock()
	if initial.Positive() {
		sub.Request(initial)
	}
}

// OnNext records the value and returns the scripted replenishment.
func (r *RecordingSubscriber[T]) OnNext(value T) stream.Demand {
	r.mu.Lock()
	fn := r.OnNextFunc
	r.mu.Unlock()
	if fn != nil {
		fn(value)
	}
	r.mu.Lock()
	r.Values = append(r.Values, value)
	per := r.PerValue
	r.mu.Unlock()
	return per
}

// OnComplete records the terminal signal.
func (r *RecordingSubscriber[T]) OnComplete(err error) {
	r.mu.Lock()
	r.CompleteCalls++
	r.CompleteErr = err
	r.mu.Unlock()
}

// Request forwards a demand request through the stored subscription.
func (r *RecordingSubscriber[T]) Request(d stream.Demand) {
	r.mu.Lock()
	sub := r.subscription
	r.mu.Unlock()
	if sub != nil {
		sub.Request(d)
	}
}

// Cancel cancels the stored subscription.
func (r *RecordingSubscriber[T]) Cancel() {
	r.mu.Lock()
	sub := r.subscription
	r.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Received returns a copy of the values delivered so far.
func (r *RecordingSubscriber[T]) Received() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.Values))
	copy(out, r.Values)
	return out
}

// Completed reports whether a terminal signal arrived.
func (r *RecordingSubscriber[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CompleteCalls > 0
}

// Completions returns how many terminal signals arrived.
func (r *RecordingSubscriber[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CompleteCalls
}

// Err returns the error carried by the terminal signal, if any.
func (r *RecordingSubscriber[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CompleteErr
}
