// Package config loads toolhouse settings from an optional YAML file and the
// environment, and derives the capability flags that decide which tools are
// registered.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "toolhouse.yaml"

// Environment variables that override file settings.
const (
	EnvTavilyKey    = "TAVILY_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvUnsplashKey  = "UNSPLASH_ACCESS_KEY"
	EnvRedisAddr    = "TOOLHOUSE_REDIS_ADDR"
	EnvLogLevel     = "TOOLHOUSE_LOG_LEVEL"
	EnvMaxInputSize = "TOOLHOUSE_MAX_INPUT_SIZE"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	MaxInputSize int           `yaml:"max_input_size"`
	HTTP         HTTPConfig    `yaml:"http"`
	History      HistoryConfig `yaml:"history"`
	Tavily       TavilyConfig  `yaml:"tavily"`
	GitHub       GitHubConfig  `yaml:"github"`
	Social       SocialConfig  `yaml:"social"`
}

// HTTPConfig holds settings shared by outbound API clients.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig selects the roll history backend.
// Backend is "", "memory" or "redis"; an empty backend disables history.
type HistoryConfig struct {
	Backend string        `yaml:"backend"`
	Size    int           `yaml:"size"`
	Redis   RedisConfig   `yaml:"redis"`
	TTL     time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

type SocialConfig struct {
	UnsplashKey string `yaml:"unsplash_access_key"`
	QuotableURL string `yaml:"quotable_url"`
	UnsplashURL string `yaml:"unsplash_url"`
	PicsumURL   string `yaml:"picsum_url"`
}

// Capabilities are computed once at start-up from Config. Tools never probe
// for credentials at call time.
type Capabilities struct {
	WebSearch      bool
	GitHubAuth     bool
	UnsplashImages bool
	History        bool
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel:     "info",
		MaxInputSize: 4096,
		HTTP:         HTTPConfig{Timeout: 30 * time.Second},
		History: HistoryConfig{
			Size:  100,
			Redis: RedisConfig{Prefix: "toolhouse:history:"},
		},
		Social: SocialConfig{
			QuotableURL: "https://api.quotable.io",
			UnsplashURL: "https://api.unsplash.com",
			PicsumURL:   "https://picsum.photos",
		},
	}
}

// Load reads path (a missing file yields defaults) and applies environment
// overrides. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvTavilyKey, &c.Tavily.APIKey)
	set(EnvGitHubToken, &c.GitHub.Token)
	set(EnvUnsplashKey, &c.Social.UnsplashKey)
	set(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.History.Redis.Addr = v
		if c.History.Backend == "" {
			c.History.Backend = "redis"
		}
	}
	if v, ok := lookup(EnvMaxInputSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxInputSize, v, err)
		}
		c.MaxInputSize = n
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.History.Backend {
	case "", "memory":
	case "redis":
		if c.History.Redis.Addr == "" {
			return errors.New("history backend redis requires history.redis.addr")
		}
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if c.History.Size < 1 {
		return fmt.Errorf("history size must be positive, got %d", c.History.Size)
	}
	if c.MaxInputSize < 1 {
		return fmt.Errorf("max input size must be positive, got %d", c.MaxInputSize)
	}
	return nil
}

// Capabilities derives the feature flags for this configuration.
func (c Config) Capabilities() Capabilities {
	return Capabilities{
		WebSearch:      c.Tavily.APIKey != "",
		GitHubAuth:     c.GitHub.Token != "",
		UnsplashImages: c.Social.UnsplashKey != "",
		History:        c.History.Backend != "",
	}
}
