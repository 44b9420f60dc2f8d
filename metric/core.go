package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains runtime-level metrics shared by all pipeline stages
// (not stage-specific; stages register their own metrics via the registry).
type Metrics struct {
	// Pipeline metrics
	ValuesDelivered *prometheus.CounterVec
	TerminalsTotal  *prometheus.CounterVec
	DemandRequested *prometheus.CounterVec

	// Bridge metrics
	BridgeConnected prometheus.Gauge
	BridgeFetches   prometheus.Counter
	BridgePublishes prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all runtime metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ValuesDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pushstream",
				Subsystem: "pipeline",
				Name:      "values_delivered_total",
				Help:      "Total number of values delivered downstream",
			},
			[]string{"stage"},
		),

		TerminalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pushstream",
				Subsystem: "pipeline",
				Name:      "terminals_total",
				Help:      "Total number of terminal completions delivered",
			},
			[]string{"stage", "outcome"},
		),

		DemandRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pushstream",
				Subsystem: "pipeline",
				Name:      "demand_requested_total",
				Help:      "Total units of finite demand requested from upstream",
			},
			[]string{"stage"},
		),

		BridgeConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pushstream",
				Subsystem: "bridge",
				Name:      "connected",
				Help:      "Bridge connection status (0=disconnected, 1=connected)",
			},
		),

		BridgeFetches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pushstream",
				Subsystem: "bridge",
				Name:      "fetches_total",
				Help:      "Total number of JetStream fetch batches issued",
			},
		),

		BridgePublishes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pushstream",
				Subsystem: "bridge",
				Name:      "publishes_total",
				Help:      "Total number of values published by the sink",
			},
		),
	}
}
