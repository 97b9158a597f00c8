package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration.
type Config struct {
	// Task list settings
	DataFile string `toml:"data_file"`
	Capacity int    `toml:"capacity"`

	// Server settings
	ServerPort string `toml:"server_port"`

	// Logging and OpenTelemetry settings. An empty LogLevel lets each
	// binary pick its own default.
	LogLevel         string `toml:"log_level"`
	TelemetryEnabled bool   `toml:"telemetry_enabled"`
	OTLPEndpoint     string `toml:"otlp_endpoint"`
	ServiceName      string `toml:"service_name"`
	Environment      string `toml:"environment"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataFile:     "tasks.txt",
		Capacity:     100,
		ServerPort:   "8080",
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "quokka",
		Environment:  "development",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// TRACKER_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TRACKER_CONFIG"); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.DataFile = getEnv("TRACKER_DATA_FILE", cfg.DataFile)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	var err error
	if cfg.Capacity, err = getEnvInt("TRACKER_CAPACITY", cfg.Capacity); err != nil {
		return nil, err
	}
	if cfg.TelemetryEnabled, err = getEnvBool("TELEMETRY_ENABLED", cfg.TelemetryEnabled); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the values present in a TOML file onto cfg.
func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the tracker cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataFile) == "" {
		errs = append(errs, errors.New("data file path is empty"))
	}
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity must be at least 1, got %d", c.Capacity))
	}
	if c.TelemetryEnabled && c.OTLPEndpoint == "" {
		errs = append(errs, errors.New("telemetry enabled without an OTLP endpoint"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
