// Package buffer provides a demand-aware queueing operator for push-based
// streams, with configurable prefetch and overflow policies, built-in
// statistics tracking, and optional Prometheus metrics integration.
//
// # Overview
//
// A Buffer sits between an upstream publisher and a downstream subscriber.
// It absorbs upstream pushes into a bounded FIFO queue and replays them
// downstream only as the downstream requests demand. This decouples the
// rates of the two sides: a bursty producer can run ahead of a slow
// consumer by up to the queue capacity before any policy applies.
//
// # Quick Start
//
// Basic buffer creation:
//
//	buf, err := buffer.New(upstream, 1000, buffer.KeepFull, buffer.DropOldest)
//	if err != nil {
//		log.Fatal(err)
//	}
//	buf.Subscribe(downstream)
//
// With overflow failure and metrics:
//
//	buf, err := buffer.New(upstream, 5000, buffer.ByRequest,
//		buffer.ErrorOnFull(nil),
//		buffer.WithMetrics[[]byte](registry, "network_input"),
//	)
//
// # Prefetch Strategies
//
// The prefetch strategy determines the single demand request the buffer
// issues upstream when it subscribes:
//
//   - KeepFull: request demand equal to the queue capacity, then request
//     one more each time a value drains downstream. Upstream can never
//     legally overrun the queue.
//   - ByRequest: request Unlimited demand. The queue absorbs whatever
//     upstream pushes, and the overflow policy is the only backstop.
//
// # Overflow Policies
//
// Three behaviors are available when a value arrives at a full queue:
//
//   - DropNewest: discard the incoming value, queue unchanged
//   - DropOldest: evict the oldest queued value to make room
//   - ErrorOnFull: cancel upstream and fail the stream with an error
//     produced lazily by a factory
//
// With ErrorOnFull the failure is not delivered immediately: queued values
// drain first, and the error arrives as the terminal completion once the
// queue is empty. The same deferral applies to normal upstream completion.
//
// # Statistics and Metrics
//
// Every buffer tracks statistics (enqueued, delivered, dropped, overflow
// events, queue depth) with atomic counters; they are always on and
// available via Statistics(). Prometheus export is opt-in through
// WithMetrics and a metric.MetricsRegistry.
//
// # Concurrency
//
// Buffer methods are safe for concurrent use. Deliveries to the downstream
// subscriber happen outside the buffer's internal lock, and a subscriber
// may call Request or Cancel from inside its own OnNext without deadlock.
package buffer
