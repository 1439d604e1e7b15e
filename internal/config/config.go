// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all prodash configuration.
type Config struct {
	Service   Service   `yaml:"service"`
	Dashboard Dashboard `yaml:"dashboard"`
}

// Service holds remote catalog service settings.
type Service struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Dashboard holds dashboard presentation settings.
type Dashboard struct {
	PageSize int `yaml:"page_size"`
	DelayMS  int `yaml:"delay_ms"` // demo latency asked of the list endpoints; 0 disables
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: Service{
			BaseURL: "https://dummyjson.com",
			Timeout: 30 * time.Second,
		},
		Dashboard: Dashboard{
			PageSize: 10,
			DelayMS:  1000,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return errors.New("config: service.base_url cannot be empty")
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("config: service.timeout must be positive, got %v", c.Service.Timeout)
	}
	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("config: dashboard.page_size must be positive, got %d", c.Dashboard.PageSize)
	}
	if c.Dashboard.DelayMS < 0 {
		return fmt.Errorf("config: dashboard.delay_ms must be non-negative, got %d", c.Dashboard.DelayMS)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: PRODASH_BASE_URL, PRODASH_TIMEOUT, PRODASH_PAGE_SIZE,
// PRODASH_DELAY_MS.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PRODASH_BASE_URL"); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv("PRODASH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid PRODASH_TIMEOUT %q: %w", v, err)
		}
		c.Service.Timeout = d
	}
	if v := os.Getenv("PRODASH_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PRODASH_PAGE_SIZE %q: %w", v, err)
		}
		c.Dashboard.PageSize = n
	}
	if v := os.Getenv("PRODASH_DELAY_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PRODASH_DELAY_MS %q: %w", v, err)
		}
		c.Dashboard.DelayMS = n
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Service   *rawService   `yaml:"service"`
	Dashboard *rawDashboard `yaml:"dashboard"`
}

type rawService struct {
	BaseURL *string        `yaml:"base_url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawDashboard struct {
	PageSize *int `yaml:"page_size"`
	DelayMS  *int `yaml:"delay_ms"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Service != nil {
		if layer.Service.BaseURL != nil {
			c.Service.BaseURL = *layer.Service.BaseURL
		}
		if layer.Service.Timeout != nil {
			c.Service.Timeout = *layer.Service.Timeout
		}
	}
	if layer.Dashboard != nil {
		if layer.Dashboard.PageSize != nil {
			c.Dashboard.PageSize = *layer.Dashboard.PageSize
		}
		if layer.Dashboard.DelayMS != nil {
			c.Dashboard.DelayMS = *layer.Dashboard.DelayMS
		}
	}
}
