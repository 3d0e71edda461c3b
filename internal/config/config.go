// Package config loads the dashboard's runtime configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional config file inside the state directory.
const FileName = "config.yaml"

// Config is fixed for the lifetime of the process.
type Config struct {
	// APIBaseURL is the Arc-i-Tech API root (default http://localhost:8080).
	APIBaseURL string `yaml:"api_base_url"`
	// WebBaseURL is the browser dashboard root, used by `arcdash open`.
	WebBaseURL string `yaml:"web_base_url"`
	// Debug logs every successful API response.
	Debug bool `yaml:"debug"`
	// Environment tags annotated errors and log lines (development, staging, production).
	Environment string `yaml:"environment"`
	// StateDir holds the token, the cached role, the config file and the log.
	StateDir string `yaml:"-"`
	// Timeout bounds each API call.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:  "http://localhost:8080",
		WebBaseURL:  "http://localhost:3000",
		Environment: "development",
		Timeout:     30 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validURL("api_base_url", c.APIBaseURL); err != nil {
		return err
	}
	if err := validURL("web_base_url", c.WebBaseURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state dir is required")
	}
	return nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.WebBaseURL != "" {
		c.WebBaseURL = other.WebBaseURL
	}
	if other.Debug {
		c.Debug = true
	}
	if other.Environment != "" {
		c.Environment = other.Environment
	}
	if other.Timeout > 0 {
		c.Timeout = other.Timeout
	}
}

// Path returns the config file location inside the state directory.
func (c *Config) Path() string {
	return filepath.Join(c.StateDir, FileName)
}

// LoadFromFile reads a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveToFile writes c as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func validURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", field, raw)
	}
	return nil
}
