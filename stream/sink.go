package stream

import "sync"

// Collector is a subscriber that gathers received values into a slice.
// Demand behavior is configurable: Collect requests Unlimited up front, while
// CollectWith lets tests and flow-controlled consumers grant demand manually
// through Request.
type Collector[T any] struct {
	mu        sync.Mutex
	initial   Demand
	perValue  Demand
	sub       Subscription
	values    []T
	err       error
	completed bool
}

// Collect returns a collector that requests Unlimited demand on subscribe.
func Collect[T any]() *Collector[T] {
	return &Collector[T]{initial: Unlimited}
}

// CollectWith returns a collector that requests initial demand on subscribe
// and grants perValue additional demand from each OnNext return.
func CollectWith[T any](initial, perValue Demand) *Collector[T] {
	return &Collector[T]{initial: initial, perValue: perValue}
}

// OnSubscribe stores the subscription and issues the initial request.
func (c *Collector[T]) OnSubscribe(sub Subscription) {
	c.mu.Lock()
	c.sub = sub
	initial := c.initial
	c.mu.Unlock()
	if initial.Positive() {
		sub.Request(initial)
	}
}

// OnNext records the value and grants the configured per-value demand.
func (c *Collector[T]) OnNext(value T) Demand {
	c.mu.Lock()
	c.values = append(c.values, value)
	granted := c.perValue
	c.mu.Unlock()
	return granted
}

// OnComplete records the terminal completion.
func (c *Collector[T]) OnComplete(err error) {
	c.mu.Lock()
	c.completed = true
	c.err = err
	c.mu.Unlock()
}

// Request grants additional demand through the held subscription. It is a
// no-op before OnSubscribe.
func (c *Collector[T]) Request(d Demand) {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()
	if sub != nil {
		sub.Request(d)
	}
}

// Cancel cancels the held subscription, if any.
func (c *Collector[T]) Cancel() {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Values returns a copy of the values received so far.
func (c *Collector[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

// Completed reports whether a terminal completion has been received.
func (c *Collector[T]) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Err returns the terminal failure, or nil if the stream succeeded or has
// not completed.
func (c *Collector[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Each returns a subscriber with Unlimited demand that invokes fn for every
// value and done (which may be nil) on terminal completion.
func Each[T any](fn func(T), done func(error)) Subscriber[T] {
	return SubscriberFuncs[T]{
		OnSubscribeFunc: func(sub Subscription) {
			sub.Request(Unlimited)
		},
		OnNextFunc: func(v T) Demand {
			fn(v)
			return None
		},
		OnCompleteFunc: func(err error) {
			if done != nil {
				done(err)
			}
		},
	}.Build()
}
