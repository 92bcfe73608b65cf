package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sundayezeilo/linkbatch/internal/errx"
)

// Config holds all application configuration.
type Config struct {
	API   APIConfig
	Batch BatchConfig
	Files FilesConfig
	App   AppConfig
}

// APIConfig holds the remote shortening service configuration.
type APIConfig struct {
	Key     string        `envconfig:"LINKO_API_KEY" required:"true"`
	URL     string        `envconfig:"LINKO_API_URL" default:"https://linko.me/api/url/add"`
	Timeout time.Duration `envconfig:"LINKO_TIMEOUT" default:"20s"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("api key cannot be empty")
	}
	if c.URL == "" {
		return errors.New("api url cannot be empty")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("api url must include host")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// BatchConfig holds request throttling configuration.
type BatchConfig struct {
	Size     int           `envconfig:"BATCH_SIZE" default:"5"`
	Cooldown time.Duration `envconfig:"BATCH_COOLDOWN" default:"60s"`
	Pace     time.Duration `envconfig:"BATCH_PACE" default:"0s"` // 0 disables pacing
}

// Validate validates the batch configuration.
func (c *BatchConfig) Validate() error {
	if c.Size <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.Cooldown < 0 {
		return errors.New("cooldown cannot be negative")
	}
	if c.Pace < 0 {
		return errors.New("pace cannot be negative")
	}
	return nil
}

// FilesConfig holds input and output file paths.
type FilesConfig struct {
	Input   string `envconfig:"INPUT_FILE" default:"sso_links.txt"`
	Success string `envconfig:"OUTPUT_FILE" default:"final_shortened_links.txt"`
	Failed  string `envconfig:"FAILED_FILE" default:"failed_links_to_retry.txt"`
}

// Validate validates the file configuration.
func (c *FilesConfig) Validate() error {
	if c.Input == "" {
		return errors.New("input file cannot be empty")
	}
	if c.Success == "" {
		return errors.New("output file cannot be empty")
	}
	if c.Failed == "" {
		return errors.New("failed file cannot be empty")
	}
	if c.Success == c.Failed {
		return fmt.Errorf("output file and failed file must differ (both %q)", c.Success)
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"production"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`     // debug, info, warn, error
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`    // text, json
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.LogFormat)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (.env loading happens in internal/app for dev, not here.)
// All failures are reported as errx.Config.
func Load() (*Config, error) {
	const op = "config.Load"

	cfg := &Config{}

	if err := envconfig.Process("", &cfg.API); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("failed to load API config: %w", err))
	}
	if err := cfg.API.Validate(); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("invalid API config: %w", err))
	}

	if err := envconfig.Process("", &cfg.Batch); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("failed to load Batch config: %w", err))
	}
	if err := cfg.Batch.Validate(); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("invalid Batch config: %w", err))
	}

	if err := envconfig.Process("", &cfg.Files); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("failed to load Files config: %w", err))
	}
	if err := cfg.Files.Validate(); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("invalid Files config: %w", err))
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("failed to load App config: %w", err))
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, errx.E(op, errx.Config, fmt.Errorf("invalid App config: %w", err))
	}

	return cfg, nil
}
