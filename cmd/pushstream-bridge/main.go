// Package main implements the PushStream bridge: a JetStream pull consumer
// coupled to a core NATS publisher through a demand-aware buffer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/pushstream/buffer"
	"github.com/c360/pushstream/metric"
	"github.com/c360/pushstream/natsbridge"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "pushstream-bridge"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Bridge failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := natsbridge.LoadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSource(); err != nil {
		return err
	}
	if err := cfg.ValidateSink(); err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	slog.Info("Starting bridge",
		"version", Version,
		"config_path", cliCfg.ConfigPath,
		"stream", cfg.Stream,
		"subject", cfg.Subject,
		"publish_subject", cfg.PublishSubject)

	registry := metric.NewMetricsRegistry()

	if cliCfg.MetricsPort > 0 {
		metricsServer := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := metricsServer.Stop(); err != nil {
				slog.Warn("Metrics server shutdown failed", "error", err)
			}
		}()
		slog.Info("Metrics server started", "address", metricsServer.Address())
	}

	ctx := context.Background()

	src, err := natsbridge.NewSource(ctx, cfg,
		natsbridge.WithLogger(logger),
		natsbridge.WithMetrics(registry.CoreMetrics()))
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("Source shutdown failed", "error", err)
		}
	}()

	sink, err := natsbridge.NewSink(cfg,
		natsbridge.WithLogger(logger),
		natsbridge.WithMetrics(registry.CoreMetrics()))
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Warn("Sink shutdown failed", "error", err)
		}
	}()

	buf, err := buffer.New[[]byte](src, cliCfg.BufferSize,
		prefetchStrategy(cliCfg.Prefetch),
		overflowStrategy(cliCfg.WhenFull),
		buffer.WithLogger[[]byte](logger),
		buffer.WithMetrics[[]byte](registry, cfg.Name))
	if err != nil {
		return err
	}

	buf.Subscribe(sink)

	return waitForShutdown(sink, buf)
}

func prefetchStrategy(name string) buffer.PrefetchStrategy {
	if name == "byrequest" {
		return buffer.ByRequest
	}
	return buffer.KeepFull
}

func overflowStrategy(name string) buffer.OverflowStrategy {
	switch name {
	case "dropnewest":
		return buffer.DropNewest
	case "error":
		return buffer.ErrorOnFull(nil)
	default:
		return buffer.DropOldest
	}
}

// waitForShutdown blocks until the stream terminates or a signal arrives.
func waitForShutdown(sink *natsbridge.Sink, buf *buffer.Buffer[[]byte]) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case <-sink.Done():
		if err := sink.Err(); err != nil {
			return err
		}
		slog.Info("Stream completed")
	}

	stats := buf.Statistics()
	slog.Info("Final buffer statistics",
		"enqueued", stats.Enqueued(),
		"delivered", stats.Delivered(),
		"dropped", stats.Dropped(),
		"overflows", stats.Overflows(),
		"max_depth", stats.MaxDepth(),
		"uptime", stats.Uptime().String())

	return nil
}
