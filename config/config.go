package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CATGALLERY_ENDPOINT.
const EnvPrefix = "CATGALLERY"

// Config holds gallery configuration.
type Config struct {
	Endpoint     string        `mapstructure:"endpoint"`
	APIKey       string        `mapstructure:"api-key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinLoading   time.Duration `mapstructure:"min-loading"`
	UserAgent    string        `mapstructure:"user-agent"`
	MaxBodyBytes int           `mapstructure:"max-body-bytes"` // 0 means unlimited
	Headless     bool          `mapstructure:"headless"`
	Count        int           `mapstructure:"count"` // 0 runs until interrupted
	Interval     time.Duration `mapstructure:"interval"`
	OutputFormat string        `mapstructure:"format"` // text, csv, or json
	Verify       bool          `mapstructure:"verify"`
	MetricsAddr  string        `mapstructure:"metrics-addr"`
	LogFile      string        `mapstructure:"log-file"`
	Verbose      bool          `mapstructure:"verbose"`
}

// DefaultConfig returns defaults targeting the public cat API.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     "https://api.thecatapi.com/v1/images/search",
		Timeout:      10 * time.Second,
		MinLoading:   500 * time.Millisecond,
		UserAgent:    "go-cat-gallery/1.0 (+https://github.com/aluiziolira/go-cat-gallery)",
		MaxBodyBytes: 32 << 20,
		Count:        1,
		Interval:     0,
		OutputFormat: "text",
	}
}

// DefaultPath is the config file consulted when no explicit path is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "catgallery", "config.yml"), nil
}

// Load layers defaults, the YAML config file and CATGALLERY_* environment
// variables. A missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", defaults.Endpoint)
	v.SetDefault("api-key", defaults.APIKey)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("min-loading", defaults.MinLoading)
	v.SetDefault("user-agent", defaults.UserAgent)
	v.SetDefault("max-body-bytes", defaults.MaxBodyBytes)
	v.SetDefault("headless", defaults.Headless)
	v.SetDefault("count", defaults.Count)
	v.SetDefault("interval", defaults.Interval)
	v.SetDefault("format", defaults.OutputFormat)
	v.SetDefault("verify", defaults.Verify)
	v.SetDefault("metrics-addr", defaults.MetricsAddr)
	v.SetDefault("log-file", defaults.LogFile)
	v.SetDefault("verbose", defaults.Verbose)

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	parsedURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("endpoint must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MinLoading < 0 {
		return fmt.Errorf("min loading cannot be negative")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max body bytes cannot be negative")
	}
	if c.Count < 0 {
		return fmt.Errorf("count cannot be negative")
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval cannot be negative")
	}
	if c.Count == 0 && c.Interval == 0 {
		return fmt.Errorf("interval must be positive when count is 0 (continuous mode)")
	}
	if c.OutputFormat != "text" && c.OutputFormat != "csv" && c.OutputFormat != "json" {
		return fmt.Errorf("output format must be text, csv, or json")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
