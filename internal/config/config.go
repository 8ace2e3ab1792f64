package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the console's runtime configuration, sourced from the
// environment with an optional .env file.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"ENV"`
	APIBaseURL     string `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSec int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Object storage for hospital logos. When BLOB_SAS_URL is empty,
	// uploads land in an in-memory store: fine for development, useless
	// in production.
	BlobSASURL     string `mapstructure:"BLOB_SAS_URL"`
	StorageAccount string `mapstructure:"STORAGE_ACCOUNT_NAME"`
	BlobContainer  string `mapstructure:"BLOB_CONTAINER"`

	SearchDebounceMS int    `mapstructure:"SEARCH_DEBOUNCE_MS"`
	RowsPerPage      int    `mapstructure:"ROWS_PER_PAGE"`
	SessionCookie    string `mapstructure:"SESSION_COOKIE"`
}

// Load reads configuration from the environment, falling back to a .env
// file when one exists.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("SEARCH_DEBOUNCE_MS", 500)
	v.SetDefault("ROWS_PER_PAGE", 10)
	v.SetDefault("SESSION_COOKIE", "console_session")
	v.SetDefault("BLOB_CONTAINER", "logos")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("API_BASE_URL")
	v.BindEnv("HTTP_TIMEOUT_SECONDS")
	v.BindEnv("BLOB_SAS_URL")
	v.BindEnv("STORAGE_ACCOUNT_NAME")
	v.BindEnv("BLOB_CONTAINER")
	v.BindEnv("SEARCH_DEBOUNCE_MS")
	v.BindEnv("ROWS_PER_PAGE")
	v.BindEnv("SESSION_COOKIE")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.HTTPTimeoutSec < 1 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be at least 1, got %d", c.HTTPTimeoutSec)
	}
	if c.RowsPerPage < 1 {
		return fmt.Errorf("ROWS_PER_PAGE must be at least 1, got %d", c.RowsPerPage)
	}
	if c.BlobSASURL != "" && c.StorageAccount == "" {
		return fmt.Errorf("STORAGE_ACCOUNT_NAME is required when BLOB_SAS_URL is set")
	}
	return nil
}

// IsDev reports whether the console runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HTTPTimeout returns the upstream call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// SearchDebounce returns the search debounce interval as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}
