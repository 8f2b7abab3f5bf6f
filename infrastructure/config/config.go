package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the resolver
type Config struct {
	Repository  RepositoryConfig  `yaml:"repository"`
	Wait        WaitConfig        `yaml:"wait"`
	Resolver    ResolverConfig    `yaml:"resolver"`
	SelfHealing SelfHealingConfig `yaml:"selfHealing"`
	Browser     BrowserConfig     `yaml:"browser"`
	Log         LogConfig         `yaml:"log"`
}

// RepositoryConfig locates the object definitions
type RepositoryConfig struct {
	Dir string `yaml:"dir"`
}

// WaitConfig holds polling defaults
type WaitConfig struct {
	DefaultTimeout time.Duration `yaml:"defaultTimeout"`
	PollInterval   time.Duration `yaml:"pollInterval"`
}

// ResolverConfig bounds the tree walk
type ResolverConfig struct {
	MaxDepth int `yaml:"maxDepth"`
}

// SelfHealingConfig configures the model fallback
type SelfHealingConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Provider       string        `yaml:"provider"` // openai, gemini
	Model          string        `yaml:"model"`
	APIKey         string        `yaml:"-"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	SnapshotLimit  int           `yaml:"snapshotLimit"`
}

// BrowserConfig is only used by the diagnostic find command
type BrowserConfig struct {
	Driver     string `yaml:"driver"` // playwright, selenium, rod
	Headless   bool   `yaml:"headless"`
	DriverPath string `yaml:"driverPath"`
}

// LogConfig configures the logrus logger
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var (
	validDrivers   = map[string]bool{"playwright": true, "selenium": true, "rod": true}
	validProviders = map[string]bool{"openai": true, "gemini": true}
)

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Repository: RepositoryConfig{Dir: "objects"},
		Wait: WaitConfig{
			DefaultTimeout: 10 * time.Second,
			PollInterval:   250 * time.Millisecond,
		},
		Resolver: ResolverConfig{MaxDepth: 32},
		SelfHealing: SelfHealingConfig{
			Enabled:        false,
			Provider:       "openai",
			Timeout:        3 * time.Second,
			RequestTimeout: 60 * time.Second,
			SnapshotLimit:  20000,
		},
		Browser: BrowserConfig{Driver: "playwright", Headless: true},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file and finally environment variables. Missing files are
// not an error.
func Load(path string, dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the resolver cannot run with
func (c *Config) Validate() error {
	if c.Repository.Dir == "" {
		return errors.New("repository.dir is required")
	}
	if c.Wait.DefaultTimeout <= 0 {
		return fmt.Errorf("wait.defaultTimeout must be positive, got %s", c.Wait.DefaultTimeout)
	}
	if c.Wait.PollInterval <= 0 {
		return fmt.Errorf("wait.pollInterval must be positive, got %s", c.Wait.PollInterval)
	}
	if c.Wait.PollInterval >= c.Wait.DefaultTimeout {
		return fmt.Errorf("wait.pollInterval (%s) must be shorter than wait.defaultTimeout (%s)", c.Wait.PollInterval, c.Wait.DefaultTimeout)
	}
	if c.Resolver.MaxDepth <= 0 {
		return fmt.Errorf("resolver.maxDepth must be positive, got %d", c.Resolver.MaxDepth)
	}
	if !validDrivers[c.Browser.Driver] {
		return fmt.Errorf("unknown browser.driver %q", c.Browser.Driver)
	}
	if c.SelfHealing.Enabled {
		if !validProviders[c.SelfHealing.Provider] {
			return fmt.Errorf("unknown selfHealing.provider %q", c.SelfHealing.Provider)
		}
		if c.SelfHealing.Timeout <= 0 {
			return fmt.Errorf("selfHealing.timeout must be positive, got %s", c.SelfHealing.Timeout)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RESOLVER_REPOSITORY_DIR"); v != "" {
		c.Repository.Dir = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"RESOLVER_DEFAULT_TIMEOUT", &c.Wait.DefaultTimeout},
		{"RESOLVER_POLL_INTERVAL", &c.Wait.PollInterval},
		{"RESOLVER_HEAL_TIMEOUT", &c.SelfHealing.Timeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"RESOLVER_SELF_HEALING", &c.SelfHealing.Enabled},
		{"RESOLVER_HEADLESS", &c.Browser.Headless},
		{"RESOLVER_LOG_JSON", &c.Log.JSON},
	}
	for _, b := range bools {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	if v := os.Getenv("RESOLVER_HEAL_PROVIDER"); v != "" {
		c.SelfHealing.Provider = v
	}
	if v := os.Getenv("RESOLVER_BROWSER_DRIVER"); v != "" {
		c.Browser.Driver = v
	}
	if v := os.Getenv("BROWSER_DRIVER_PATH"); v != "" {
		c.Browser.DriverPath = v
	}
	if v := os.Getenv("RESOLVER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	switch c.SelfHealing.Provider {
	case "openai":
		c.SelfHealing.APIKey = os.Getenv("OPENAI_API_KEY")
		if v := os.Getenv("OPENAI_MODEL"); v != "" {
			c.SelfHealing.Model = v
		}
	case "gemini":
		c.SelfHealing.APIKey = os.Getenv("GEMINI_API_KEY")
		if c.SelfHealing.APIKey == "" {
			c.SelfHealing.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
		if v := os.Getenv("GEMINI_MODEL"); v != "" {
			c.SelfHealing.Model = v
		}
	}
	if v := os.Getenv("RESOLVER_HEAL_MODEL"); v != "" {
		c.SelfHealing.Model = v
	}

	return nil
}
