// Package errors provides standardized error handling patterns for PushStream components.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// reactive stream pipelines: Transient (temporary, retryable), Invalid (bad
// input or configuration, non-retryable), and Fatal (unrecoverable, stop
// processing).
//
// This classification lets pipeline stages and bridges make informed
// decisions about retries and failure propagation without hardcoded error
// string matching.
//
// # Error Classification
//
// Errors are classified based on their type or content:
//
//   - Transient: connection loss, timeouts, temporary unavailability (retry recommended)
//   - Invalid: malformed input, validation failures, bad configuration (do not retry)
//   - Fatal: missing required configuration, unrecoverable states (stop processing)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Relation to the Stream Protocol
//
// Recoverable failures (including overflow failures synthesized by the
// buffer package's ErrorOnFull strategy) flow through the normal terminal
// completion channel as ordinary error values; use IsOverflow to detect
// them. Protocol contract violations, such as a producer emitting without
// demand or after a terminal completion, are programmer errors and surface as
// panics by the stream package, never as values from this package.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if !connected {
//	    return errors.ErrNoConnection
//	}
//
// Wrap errors with component context:
//
//	if err := sub.Fetch(n); err != nil {
//	    return errors.WrapTransient(err, "Source", "Fetch", "pull batch")
//	}
//
// Check classification for retry logic:
//
//	if errors.IsTransient(err) {
//	    // safe to retry
//	}
package errors
