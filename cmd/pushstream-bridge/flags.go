package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	BufferSize      int
	Prefetch        string
	WhenFull        string
	MetricsPort     int
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("PUSHSTREAM_CONFIG", "configs/bridge.yaml"),
		"Path to bridge configuration file (env: PUSHSTREAM_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("PUSHSTREAM_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: PUSHSTREAM_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("PUSHSTREAM_LOG_FORMAT", "json"),
		"Log format: json, text (env: PUSHSTREAM_LOG_FORMAT)")

	flag.IntVar(&cfg.BufferSize, "buffer-size",
		getEnvInt("PUSHSTREAM_BUFFER_SIZE", 256),
		"Queue capacity between source and sink (env: PUSHSTREAM_BUFFER_SIZE)")

	flag.StringVar(&cfg.Prefetch, "prefetch",
		getEnv("PUSHSTREAM_PREFETCH", "keepfull"),
		"Prefetch strategy: keepfull, byrequest (env: PUSHSTREAM_PREFETCH)")

	flag.StringVar(&cfg.WhenFull, "when-full",
		getEnv("PUSHSTREAM_WHEN_FULL", "dropoldest"),
		"Overflow strategy: dropnewest, dropoldest, error (env: PUSHSTREAM_WHEN_FULL)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("PUSHSTREAM_METRICS_PORT", 0),
		"Prometheus metrics port, 0 disables (env: PUSHSTREAM_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.BufferSize < 0 {
		return fmt.Errorf("buffer-size must be non-negative, got %d", cfg.BufferSize)
	}
	switch cfg.Prefetch {
	case "keepfull", "byrequest":
	default:
		return fmt.Errorf("unknown prefetch strategy %q", cfg.Prefetch)
	}
	switch cfg.WhenFull {
	case "dropnewest", "dropoldest", "error":
	default:
		return fmt.Errorf("unknown overflow strategy %q", cfg.WhenFull)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
