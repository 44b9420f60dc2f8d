// Package stream defines the demand-propagation core of PushStream: the
// Demand value type and the Publisher, Subscriber, and Subscription
// contracts that every pipeline stage implements.
package stream

import "fmt"

// Publisher is a source of sequenced values and a single terminal
// completion, gated by the demand its subscriber grants.
//
// Subscribe is a factory method: it may be called multiple times, each call
// starting an independent subscription.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives exactly one subscription, then a sequence of values,
// then at most one terminal completion.
//
// The Demand returned from OnNext is additional demand granted on top of
// whatever remains outstanding; returning None grants nothing beyond demand
// already requested through the subscription.
type Subscriber[T any] interface {
	// OnSubscribe delivers the subscription through which the subscriber
	// requests demand or cancels. Called exactly once, before any value.
	OnSubscribe(s Subscription)

	// OnNext delivers one value. Each delivered value consumes one unit of
	// outstanding demand; the return value adds new demand on top of what
	// remains.
	OnNext(value T) Demand

	// OnComplete delivers the terminal completion: nil for success, non-nil
	// for failure. No values or completions follow it.
	OnComplete(err error)
}

// Subscription is the per-connection handle linking one publisher to one
// subscriber. Request is additive and may be called from any context,
// including from inside the subscriber's own OnNext. Cancel is idempotent;
// after cancellation all further Request calls are accepted but have no
// observable effect.
type Subscription interface {
	Request(d Demand)
	Cancel()
}

// violation panics to surface a protocol contract violation: a broken
// producer is a programmer error, not a recoverable runtime condition.
func violation(format string, args ...any) {
	panic(fmt.Sprintf("stream: protocol violation: "+format, args...))
}
