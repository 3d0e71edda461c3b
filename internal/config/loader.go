package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Environment variables, read once by Load.
const (
	EnvAPIBaseURL  = "ARCDASH_API_BASE_URL"
	EnvWebBaseURL  = "ARCDASH_WEB_URL"
	EnvDebug       = "ARCDASH_DEBUG"
	EnvEnvironment = "ARCDASH_APP_ENV"
	EnvHome        = "ARCDASH_HOME"
	EnvTimeout     = "ARCDASH_TIMEOUT"
)

// Loader resolves configuration with layered precedence:
//  1. Default config
//  2. <state dir>/config.yaml
//  3. Environment variables
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
	home   func() (string, error)
}

// NewLoader creates a Loader reading the process environment.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv, home: os.UserHomeDir}
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	stateDir, err := l.stateDir()
	if err != nil {
		return nil, err
	}
	cfg.StateDir = stateDir

	if fileCfg, err := LoadFromFile(cfg.Path()); err == nil {
		l.logger.Debug("loaded config file", "path", cfg.Path())
		cfg.Merge(fileCfg)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.WebBaseURL = strings.TrimRight(cfg.WebBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) stateDir() (string, error) {
	if dir := l.getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := l.home()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".arcdash"), nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v := l.getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := l.getenv(EnvWebBaseURL); v != "" {
		cfg.WebBaseURL = v
	}
	if v := l.getenv(EnvDebug); v != "" {
		cfg.Debug = v == "true"
	}
	if v := l.getenv(EnvEnvironment); v != "" {
		cfg.Environment = v
	}
	if v := l.getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}
