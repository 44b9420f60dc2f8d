// Package stream defines the demand-propagation core of PushStream.
//
// # Overview
//
// Three contracts make up the protocol:
//
//   - Publisher: accepts a Subscriber and, over time, emits values and one
//     terminal completion, gated by demand.
//   - Subscriber: receives a Subscription, then values (each return value is
//     additional demand granted), then at most one terminal completion.
//   - Subscription: the per-connection handle through which a subscriber
//     requests demand (additively) or cancels (idempotently).
//
// Demand is a saturating count or Unlimited. A publisher must not emit a
// value unless outstanding demand is positive; each emission consumes one
// unit. This rule is the entire backpressure mechanism; there are no
// timeouts and no blocking handoffs in the protocol itself.
//
// # Contract Violations
//
// Emitting without demand, emitting after a terminal completion, or
// completing twice indicates a broken producer. These are surfaced as
// panics, deliberately loud and immediate, never as recoverable error
// values. Double cancellation and request-after-cancel, by contrast, are
// defined as safe no-ops.
//
// # Reentrancy
//
// All protocol calls are synchronous, and callers may legally re-enter: a
// subscriber can call Request from inside its own OnNext. Implementations in
// this package fold nested requests into the running emit loop rather than
// recursing, and stages elsewhere in the module follow the same discipline.
//
// # Building Blocks
//
// FromSlice and Just provide demand-gated finite sources. Collector, Each,
// and SubscriberFuncs provide common sinks. Traced wraps any subscriber with
// slog event logging for pipeline debugging.
package stream
