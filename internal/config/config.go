// Package config holds the a11ylint configuration, loaded from a YAML
// file with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all a11ylint configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Rules   RulesConfig   `yaml:"rules"`
	Output  OutputConfig  `yaml:"output"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Browser BrowserConfig `yaml:"browser"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// RulesConfig selects which rules run.
type RulesConfig struct {
	Disabled []string `yaml:"disabled"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	// Format is one of text, json, pretty.
	Format string `yaml:"format"`
}

// FetchConfig configures remote page fetching.
type FetchConfig struct {
	UserAgent      string   `yaml:"user_agent"`
	Timeout        string   `yaml:"timeout"`
	MaxBodyKB      int      `yaml:"max_body_kb"`
	AllowedDomains []string `yaml:"allowed_domains"`
	BlockedDomains []string `yaml:"blocked_domains"`
}

// BrowserConfig configures rendered-page audits.
type BrowserConfig struct {
	Headless          bool   `yaml:"headless"`
	NavigationTimeout string `yaml:"navigation_timeout"`
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the category file loggers.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "a11ylint",
		Version: "0.3.0",

		Rules: RulesConfig{},

		Output: OutputConfig{
			Format: "pretty",
		},

		Fetch: FetchConfig{
			UserAgent: "a11ylint/0.3 (+accessibility audit)",
			Timeout:   "30s",
			MaxBodyKB: 2048,
		},

		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: "30s",
		},

		Store: StoreConfig{
			DatabasePath: ".a11ylint/history.db",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("A11YLINT_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("A11YLINT_USER_AGENT"); v != "" {
		c.Fetch.UserAgent = v
	}
	if v := os.Getenv("A11YLINT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("A11YLINT_DISABLED_RULES"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				c.Rules.Disabled = append(c.Rules.Disabled, id)
			}
		}
	}
	if v := os.Getenv("A11YLINT_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// ValidFormats lists the supported output formats.
var ValidFormats = []string{"text", "json", "pretty"}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	valid := false
	for _, f := range ValidFormats {
		if c.Output.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	if c.Fetch.MaxBodyKB <= 0 {
		return fmt.Errorf("fetch max_body_kb must be positive, got %d", c.Fetch.MaxBodyKB)
	}
	return nil
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetNavigationTimeout returns the browser navigation timeout.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MaxBodyBytes returns the fetch body cap in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.Fetch.MaxBodyKB) * 1024
}

// DefaultPath returns the default config location under a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".a11ylint", "config.yaml")
}
