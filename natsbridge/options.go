package natsbridge

import (
	"log/slog"

	"github.com/c360/pushstream/metric"
)

// Option configures bridge behavior using the functional options pattern.
type Option func(*bridgeOptions)

type bridgeOptions struct {
	logger  *slog.Logger
	metrics *metric.Metrics
}

// WithLogger sets the logger used by the bridge. Without it the bridge is
// silent.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *bridgeOptions) {
		opts.logger = logger
	}
}

// WithMetrics wires the bridge into the runtime's core metrics (connection
// status, fetch and publish counters).
func WithMetrics(metrics *metric.Metrics) Option {
	return func(opts *bridgeOptions) {
		opts.metrics = metrics
	}
}

func applyBridgeOptions(options ...Option) *bridgeOptions {
	opts := &bridgeOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
