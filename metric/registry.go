package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/pushstream/errors"
)

// MetricsRegistrar defines the interface for registering stage-specific metrics
type MetricsRegistrar interface {
	RegisterCounter(stageName, metricName string, counter prometheus.Counter) error
	RegisterGauge(stageName, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(stageName, metricName string, histogram prometheus.Histogram) error
	RegisterCounterVec(stageName, metricName string, counterVec *prometheus.CounterVec) error
	RegisterGaugeVec(stageName, metricName string, gaugeVec *prometheus.GaugeVec) error
	Unregister(stageName, metricName string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with core runtime metrics
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	// Initialize and register core metrics
	registry.Metrics = NewMetrics()
	registry.registerMetrics()

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core runtime metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// register adds a collector under the stage.metric key with duplicate protection.
func (r *MetricsRegistry) register(method, stageName, metricName string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", stageName, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for stage %s", metricName, stageName),
			"MetricsRegistry", method, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(c); err != nil {
		// Check if it's a duplicate registration error from Prometheus
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "MetricsRegistry", method,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapFatal(err, "MetricsRegistry", method,
			"failed to register collector with prometheus")
	}

	r.registeredMetrics[key] = c
	return nil
}

// RegisterCounter registers a counter metric for a stage
func (r *MetricsRegistry) RegisterCounter(stageName, metricName string, counter prometheus.Counter) error {
	return r.register("RegisterCounter", stageName, metricName, counter)
}

// RegisterGauge registers a gauge metric for a stage
func (r *MetricsRegistry) RegisterGauge(stageName, metricName string, gauge prometheus.Gauge) error {
	return r.register("RegisterGauge", stageName, metricName, gauge)
}

// RegisterHistogram registers a histogram metric for a stage
func (r *MetricsRegistry) RegisterHistogram(stageName, metricName string, histogram prometheus.Histogram) error {
	return r.register("RegisterHistogram", stageName, metricName, histogram)
}

// RegisterCounterVec registers a counter vector metric for a stage
func (r *MetricsRegistry) RegisterCounterVec(stageName, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register("RegisterCounterVec", stageName, metricName, counterVec)
}

// RegisterGaugeVec registers a gauge vector metric for a stage
func (r *MetricsRegistry) RegisterGaugeVec(stageName, metricName string, gaugeVec *prometheus.GaugeVec) error {
	return r.register("RegisterGaugeVec", stageName, metricName, gaugeVec)
}

// Unregister removes a metric from the registry. Returns true if the metric
// was found and removed.
func (r *MetricsRegistry) Unregister(stageName, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", stageName, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	delete(r.registeredMetrics, key)
	return r.prometheusRegistry.Unregister(collector)
}

// registerMetrics registers the core runtime metrics with prometheus
func (r *MetricsRegistry) registerMetrics() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.ValuesDelivered,
		r.Metrics.TerminalsTotal,
		r.Metrics.DemandRequested,
		r.Metrics.BridgeConnected,
		r.Metrics.BridgeFetches,
		r.Metrics.BridgePublishes,
	)
}
