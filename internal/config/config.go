package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port            int    `yaml:"port"`
		Verbose         bool   `yaml:"verbose"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Metrics struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// ParsedConfig contains parsed time.Duration values for easier use
type ParsedConfig struct {
	Config
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ReadTimeout == "" {
		cfg.Server.ReadTimeout = "30s"
	}
	if cfg.Server.WriteTimeout == "" {
		cfg.Server.WriteTimeout = "30s"
	}
	if cfg.Server.IdleTimeout == "" {
		cfg.Server.IdleTimeout = "60s"
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = "10s"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Metrics.Enabled == nil {
		enabled := true
		cfg.Metrics.Enabled = &enabled
	}
}

// LoadConfig loads configuration from a YAML file.
// A missing file yields the defaults.
func LoadConfig(filepath string) (*ParsedConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return Parse(&cfg)
}

// Parse fills defaults, parses durations and validates cfg
func Parse(cfg *Config) (*ParsedConfig, error) {
	cfg.applyDefaults()

	parsed := &ParsedConfig{Config: *cfg}

	durations := []struct {
		name  string
		value string
		out   *time.Duration
	}{
		{"read_timeout", cfg.Server.ReadTimeout, &parsed.ReadTimeout},
		{"write_timeout", cfg.Server.WriteTimeout, &parsed.WriteTimeout},
		{"idle_timeout", cfg.Server.IdleTimeout, &parsed.IdleTimeout},
		{"shutdown_timeout", cfg.Server.ShutdownTimeout, &parsed.ShutdownTimeout},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", d.name)
		}
		*d.out = value
	}

	parsed.MetricsEnabled = *cfg.Metrics.Enabled

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return parsed, nil
}

// validateConfig validates the configuration values
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	return nil
}
