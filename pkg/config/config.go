// Package config loads mergetutor configuration from defaults, an optional
// YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default configuration values exported for documentation and validation
const (
	DefaultCompletionURL = "https://tutor-relay.example.dev/"
	DefaultMaxTokens     = 2048
	DefaultTemperature   = 0.0
	DefaultLogLevel      = "info"
)

// Config represents the complete mergetutor configuration
type Config struct {
	Identity   IdentityConfig   `yaml:"identity"`
	Completion CompletionConfig `yaml:"completion"`
	DataDir    string           `yaml:"data_dir"`
	LogLevel   string           `yaml:"log_level"`
}

// IdentityConfig holds the OTP identity provider settings
type IdentityConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

// CompletionConfig holds the remote completion endpoint settings
type CompletionConfig struct {
	URL         string  `yaml:"url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Default returns a Config populated with defaults
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			URL:         DefaultCompletionURL,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		DataDir:  defaultDataDir(),
		LogLevel: DefaultLogLevel,
	}
}

func defaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("MERGETUTOR_DATA_DIR")); dir != "" {
		return expandHomePath(dir)
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".mergetutor")
	}
	return ".mergetutor"
}

func expandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}

// DefaultPath returns the standard config file location
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads configuration: defaults, then the YAML file at path when it
// exists, then environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadAndMerge(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override)
	return nil
}

// mergeConfigs merges override into base, keeping base for unset fields.
func mergeConfigs(base, override *Config) {
	if override == nil {
		return
	}
	if override.Identity.URL != "" {
		base.Identity.URL = override.Identity.URL
	}
	if override.Identity.AnonKey != "" {
		base.Identity.AnonKey = override.Identity.AnonKey
	}
	if override.Completion.URL != "" {
		base.Completion.URL = override.Completion.URL
	}
	if override.Completion.MaxTokens > 0 {
		base.Completion.MaxTokens = override.Completion.MaxTokens
	}
	if override.Completion.Temperature > 0 {
		base.Completion.Temperature = override.Completion.Temperature
	}
	if override.DataDir != "" {
		base.DataDir = expandHomePath(override.DataDir)
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MERGETUTOR_IDENTITY_URL")); v != "" {
		cfg.Identity.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("MERGETUTOR_IDENTITY_ANON_KEY")); v != "" {
		cfg.Identity.AnonKey = v
	}
	if v := strings.TrimSpace(os.Getenv("MERGETUTOR_COMPLETION_URL")); v != "" {
		cfg.Completion.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("MERGETUTOR_MAX_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Completion.MaxTokens = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MERGETUTOR_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the configuration for usability
func (c *Config) Validate() error {
	if c.Completion.URL == "" {
		return fmt.Errorf("completion.url must be set")
	}
	if _, err := url.ParseRequestURI(c.Completion.URL); err != nil {
		return fmt.Errorf("completion.url is not a valid URL: %w", err)
	}
	if c.Identity.URL != "" {
		if _, err := url.ParseRequestURI(c.Identity.URL); err != nil {
			return fmt.Errorf("identity.url is not a valid URL: %w", err)
		}
	}
	if c.Completion.MaxTokens <= 0 {
		return fmt.Errorf("completion.max_tokens must be positive")
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("completion.temperature must be in [0, 2]")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}
