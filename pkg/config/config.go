// Package config handles workspace configuration for pagekit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default timeouts used when the config leaves them unset.
const (
	DefaultElementTimeout = 10 * time.Second
	DefaultPageTimeout    = 20 * time.Second
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	Timeouts Timeouts          `yaml:"timeouts"`
	Sessions []SessionConfig   `yaml:"sessions"`
	Pages    string            `yaml:"pages"` // page definitions file, relative to the config
	Env      map[string]string `yaml:"env"`   // Environment variables

	dir string
}

// Timeouts are the default element and page waits.
type Timeouts struct {
	Element time.Duration `yaml:"element"`
	Page    time.Duration `yaml:"page"`
}

// SessionConfig describes one backend session to connect.
type SessionConfig struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"` // remote | mobile | engine

	// remote and mobile
	URL          string                 `yaml:"url"`
	Capabilities map[string]interface{} `yaml:"capabilities"`

	// engine
	Browser  string    `yaml:"browser"`
	Headless bool      `yaml:"headless"`
	Viewport core.Size `yaml:"viewport"`
	Mobile   bool      `yaml:"mobile"`
	Tablet   bool      `yaml:"tablet"`
	// DriverDir is where the Playwright driver lives; defaults to
	// <home>/drivers/playwright.
	DriverDir string `yaml:"driverDir"`
}

// Kind parses the configured backend name.
func (s SessionConfig) Kind() (platform.Kind, error) {
	return platform.ParseKind(s.Backend)
}

// Load loads configuration from a file. A .env file next to it is loaded
// first; variables already set in the environment win. ${VAR} references
// in the file are expanded before decoding.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)
	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.dir = dir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	cfg := &Config{dir: dir}
	cfg.applyDefaults()
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Timeouts.Element <= 0 {
		c.Timeouts.Element = DefaultElementTimeout
	}
	if c.Timeouts.Page <= 0 {
		c.Timeouts.Page = DefaultPageTimeout
	}
}

// Validate checks session definitions.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, s := range c.Sessions {
		if s.Name == "" {
			return fmt.Errorf("sessions[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sessions[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true

		kind, err := s.Kind()
		if err != nil {
			return fmt.Errorf("session %q: %w", s.Name, err)
		}
		if kind != platform.KindEngine && s.URL == "" {
			return fmt.Errorf("session %q: url is required for %s backends", s.Name, kind)
		}
	}
	return nil
}

// Session returns the session definition called name.
func (c *Config) Session(name string) (SessionConfig, bool) {
	for _, s := range c.Sessions {
		if s.Name == name {
			return s, true
		}
	}
	return SessionConfig{}, false
}

// PagesPath returns the page definitions file resolved against the config
// directory, or "" when none is configured.
func (c *Config) PagesPath() string {
	if c.Pages == "" {
		return ""
	}
	if filepath.IsAbs(c.Pages) || c.dir == "" {
		return c.Pages
	}
	return filepath.Join(c.dir, c.Pages)
}

// ApplyEnv exports the env section. Variables already set are kept.
func (c *Config) ApplyEnv() error {
	for k, v := range c.Env {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return nil
}
