package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/pushstream/metric"
)

// bufferMetrics holds Prometheus metrics for buffer operations. Stage-level
// counters and gauges are owned by this stage; the core pipeline metrics are
// the registry-wide vectors, recorded here under this stage's label.
type bufferMetrics struct {
	// Counter metrics - incremented directly on operations
	enqueued  prometheus.Counter
	delivered prometheus.Counter
	dropped   prometheus.Counter
	overflows prometheus.Counter
	terminals prometheus.Counter

	// Gauge metrics - updated on operations
	depth       prometheus.Gauge
	utilization prometheus.Gauge

	// Core pipeline metrics shared across stages
	core  *metric.Metrics
	stage string
}

// newBufferMetrics creates and registers buffer metrics with the provided registry.
func newBufferMetrics(registry *metric.MetricsRegistry, name string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		core:  registry.CoreMetrics(),
		stage: name,
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "enqueued_total",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Total number of values accepted into the queue",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "delivered_total",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Total number of values delivered downstream",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "dropped_total",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Total number of values discarded by the overflow policy",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "overflows_total",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Total number of overflow events",
		}),
		terminals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "terminals_total",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Total number of terminal completions delivered",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "depth",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Current number of queued values",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "pushstream",
			Subsystem:   "buffer",
			Name:        "utilization",
			ConstLabels: prometheus.Labels{"stage": name},
			Help:        "Queue utilization as a fraction (0.0 to 1.0)",
		}),
	}

	// Register all metrics with the registry
	if err := registry.RegisterCounter(name, "buffer_enqueued", m.enqueued); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "buffer_delivered", m.delivered); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "buffer_dropped", m.dropped); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "buffer_overflows", m.overflows); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "buffer_terminals", m.terminals); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "buffer_depth", m.depth); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "buffer_utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

// updateDepth refreshes the depth and utilization gauges.
func (m *bufferMetrics) updateDepth(depth, capacity int) {
	m.depth.Set(float64(depth))
	if capacity > 0 {
		m.utilization.Set(float64(depth) / float64(capacity))
	} else {
		m.utilization.Set(1.0)
	}
}

func (m *bufferMetrics) recordEnqueue(depth, capacity int) {
	m.enqueued.Inc()
	m.updateDepth(depth, capacity)
}

func (m *bufferMetrics) recordDeliver(depth, capacity int) {
	m.delivered.Inc()
	m.core.ValuesDelivered.WithLabelValues(m.stage).Inc()
	m.updateDepth(depth, capacity)
}

func (m *bufferMetrics) recordDrop() {
	m.dropped.Inc()
}

func (m *bufferMetrics) recordOverflow() {
	m.overflows.Inc()
}

func (m *bufferMetrics) recordTerminal(err error) {
	m.terminals.Inc()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.core.TerminalsTotal.WithLabelValues(m.stage, outcome).Inc()
}

// recordDemand accounts finite demand requested upstream (prefetch and
// top-ups). Unlimited requests are not counted.
func (m *bufferMetrics) recordDemand(n uint64) {
	m.core.DemandRequested.WithLabelValues(m.stage).Add(float64(n))
}
