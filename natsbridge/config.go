package natsbridge

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/pushstream/errors"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s"
// or "250ms" as well as plain nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return errors.WrapInvalid(err, "Duration", "UnmarshalYAML", "parse duration")
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := node.Decode(&n); err != nil {
		return errors.WrapInvalid(err, "Duration", "UnmarshalYAML", "decode value")
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds connection and consumer settings for the NATS bridge.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222")
	URL string `yaml:"url" json:"url"`

	// Name identifies this bridge in logs, metrics, and consumer names
	Name string `yaml:"name" json:"name"`

	// Stream is the JetStream stream the source consumes from
	Stream string `yaml:"stream" json:"stream"`

	// Subject filters which subjects the source consumer receives
	Subject string `yaml:"subject" json:"subject"`

	// PublishSubject is the subject the sink publishes to
	PublishSubject string `yaml:"publish_subject" json:"publish_subject"`

	// FetchBatch is the maximum number of messages fetched per pull
	FetchBatch int `yaml:"fetch_batch" json:"fetch_batch"`

	// FetchTimeout bounds how long a pull waits for messages
	FetchTimeout Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// SinkWindow is the demand the sink keeps outstanding upstream
	SinkWindow int `yaml:"sink_window" json:"sink_window"`

	// ConnectTimeout bounds the initial connection attempt
	ConnectTimeout Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// PublishRate, when positive, limits sink publishes per second
	PublishRate float64 `yaml:"publish_rate" json:"publish_rate"`

	// PublishBurst is the burst size for the publish rate limiter
	PublishBurst int `yaml:"publish_burst" json:"publish_burst"`
}

// DefaultConfig returns a config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		URL:            "nats://localhost:4222",
		Name:           "bridge",
		FetchBatch:     64,
		FetchTimeout:   Duration(5 * time.Second),
		SinkWindow:     64,
		ConnectTimeout: Duration(5 * time.Second),
		PublishBurst:   1,
	}
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.FetchBatch <= 0 {
		c.FetchBatch = def.FetchBatch
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.SinkWindow <= 0 {
		c.SinkWindow = def.SinkWindow
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.PublishBurst <= 0 {
		c.PublishBurst = def.PublishBurst
	}
}

// ValidateSource checks the fields the source requires.
func (c *Config) ValidateSource() error {
	if c.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "ValidateSource", "check url")
	}
	if c.Stream == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "ValidateSource", "check stream")
	}
	if c.Subject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "ValidateSource", "check subject")
	}
	return nil
}

// ValidateSink checks the fields the sink requires.
func (c *Config) ValidateSink() error {
	if c.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "ValidateSink", "check url")
	}
	if c.PublishSubject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "ValidateSink", "check publish_subject")
	}
	return nil
}

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "LoadConfig", "read file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "LoadConfig", "parse yaml")
	}

	cfg.applyDefaults()
	return cfg, nil
}
