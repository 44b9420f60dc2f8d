// Package metric provides Prometheus-based metrics collection and an HTTP
// server for PushStream pipeline monitoring and observability.
//
// The package offers a centralized metrics registry managing both core
// runtime metrics (values delivered, terminal completions, bridge health)
// and custom stage-specific metrics. It includes an HTTP server exposing
// metrics in Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Runtime-level metrics automatically registered (Metrics type)
//  2. Stage Registry: Extensible registration for stage-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// Stage-specific metrics (such as the buffer package's depth and drop
// counters) register through the MetricsRegistrar interface with
// duplicate-registration protection, so two stages with the same name fail
// loudly instead of silently sharing a collector.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Fatal(err)
//	    }
//	}()
//	defer server.Stop()
//
// Wiring a buffer stage into the registry:
//
//	buf, err := buffer.New(upstream, 64, buffer.KeepFull, buffer.DropOldest,
//	    buffer.WithMetrics[int](registry, "ingest-buffer"))
package metric
