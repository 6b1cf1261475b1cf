// Package config loads and validates the talevault configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/talevault/talevault/pkg/telemetry"
)

// Config is the top-level talevault configuration.
type Config struct {
	// Database configures the SQLite variable store.
	Database DatabaseConfig `yaml:"database" validate:"required"`

	// Script configures the dialogue script runtime.
	Script ScriptConfig `yaml:"script"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatabaseConfig configures the SQLite variable store.
type DatabaseConfig struct {
	// Path is the on-disk database file (":memory:" for ephemeral use).
	Path string `yaml:"path" validate:"required"`

	// MaxOpenConns limits concurrent connections (0 = driver default).
	MaxOpenConns int `yaml:"max_open_conns" validate:"gte=0"`

	// MaxIdleConns limits idle connections (0 = driver default).
	MaxIdleConns int `yaml:"max_idle_conns" validate:"gte=0"`
}

// ScriptConfig configures dialogue script execution.
type ScriptConfig struct {
	// Timeout bounds a single script run.
	Timeout Duration `yaml:"timeout" validate:"gte=0"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TelemetryConfig is the file-facing slice of telemetry settings.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" validate:"omitempty,oneof=development production"`
	LogLevel       string  `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	LogFormat      string  `yaml:"log_format" validate:"omitempty,oneof=console json"`
	MetricsListen  string  `yaml:"metrics_listen"`
	TracingEnabled bool    `yaml:"tracing_enabled"`
	TraceExporter  string  `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`
	TraceEndpoint  string  `yaml:"trace_endpoint"`
	SamplingRate   float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "talevault.db",
		},
		Script: ScriptConfig{
			Timeout: Duration(30 * time.Second),
		},
		Telemetry: TelemetryConfig{
			MetricsListen: ":9090",
		},
	}
}

// Load reads a YAML configuration file, fills in defaults for absent
// fields, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// TelemetrySettings converts the file-facing telemetry slice into a
// full telemetry.Config, starting from the preset matching the
// configured environment. Explicitly set fields override the preset;
// absent fields keep the preset's values.
func (c *Config) TelemetrySettings(serviceVersion string) *telemetry.Config {
	var tc *telemetry.Config
	switch c.Telemetry.Environment {
	case "production":
		tc = telemetry.ProductionConfig()
	case "development":
		tc = telemetry.DevelopmentConfig()
	default:
		tc = telemetry.DefaultConfig()
	}
	tc.ServiceVersion = serviceVersion
	if c.Telemetry.LogLevel != "" {
		tc.Logging.Level = c.Telemetry.LogLevel
	}
	if c.Telemetry.LogFormat != "" {
		tc.Logging.Format = c.Telemetry.LogFormat
	}
	if c.Telemetry.MetricsListen != "" {
		tc.Metrics.ListenAddress = c.Telemetry.MetricsListen
	}
	// The flag only ever turns tracing on; presets may already enable it.
	if c.Telemetry.TracingEnabled {
		tc.Tracing.Enabled = true
	}
	if c.Telemetry.TraceExporter != "" {
		tc.Tracing.Exporter = c.Telemetry.TraceExporter
	}
	if c.Telemetry.TraceEndpoint != "" {
		tc.Tracing.Endpoint = c.Telemetry.TraceEndpoint
	}
	if c.Telemetry.SamplingRate > 0 {
		tc.Tracing.SamplingRate = c.Telemetry.SamplingRate
	}
	return tc
}
