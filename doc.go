// Package pushstream provides a push-based reactive-stream runtime: a small
// set of cooperating contracts (publisher, subscriber, subscription) that let
// independent producers and consumers of asynchronous values compose into
// pipelines with explicit, bounded-memory backpressure.
//
// # Architecture
//
// PushStream is built in layers, each usable on its own:
//
//	┌─────────────────────────────────────┐
//	│          natsbridge                 │  Demand across process
//	│  (JetStream source, NATS sink)      │  boundaries
//	└─────────────────────────────────────┘
//	           ↓ built on
//	┌─────────────────────────────────────┐
//	│            buffer                   │  Bounded decoupling of
//	│  (prefetch + overflow strategies)   │  producer and consumer
//	└─────────────────────────────────────┘
//	           ↓ built on
//	┌─────────────────────────────────────┐
//	│            stream                   │  Demand, Publisher,
//	│   (the demand-propagation core)     │  Subscriber, Subscription
//	└─────────────────────────────────────┘
//
// # The Demand Protocol
//
// A publisher may only emit a value when the subscriber has granted demand
// for it. Demand is a saturating count (or Unlimited) requested through the
// subscription and replenished by the subscriber's return value from each
// delivery. Backpressure is therefore structural: a slow consumer simply
// stops granting demand, and no intermediate stage accumulates unbounded
// state.
//
// # The Buffer Operator
//
// The buffer package decouples an upstream producer's speed from downstream
// demand with a fixed-capacity FIFO queue, two prefetch strategies (KeepFull,
// ByRequest) and three overflow strategies (DropNewest, DropOldest,
// ErrorOnFull). It is safe against synchronous re-entry: subscribers may
// request more demand from inside their own delivery callback, and a
// misbehaving producer that recurses into the operator during overflow
// handling is short-circuited by an explicit guard.
//
// # Observability
//
// Buffer instances always collect statistics. Prometheus export is optional
// via the metric package, and structured event tracing uses log/slog
// throughout.
//
// # Quick Start
//
//	pub := stream.Just(1, 2, 3, 4, 5)
//	buf, err := buffer.New(pub, 3, buffer.ByRequest, buffer.DropOldest)
//	if err != nil {
//	    return err
//	}
//	col := stream.Collect[int]()
//	buf.Subscribe(col)
//	// col.Values() == [3 4 5]
package pushstream
