// Package config loads the storefront frontend configuration: defaults,
// then an optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/logging"
	"github.com/Sternrassler/storefront-client/pkg/prefetch"
)

// Environment variables read by Load.
const (
	EnvConfigFile = "STOREFRONT_CONFIG"
	EnvAPIURL     = "STOREFRONT_API_URL"
	// EnvPublicAPIURL is honoured for compatibility with the web frontend's
	// setting. STOREFRONT_API_URL wins when both are set.
	EnvPublicAPIURL = "NEXT_PUBLIC_API_URL"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogPretty    = "STOREFRONT_LOG_PRETTY"
	EnvTokenFile    = "STOREFRONT_TOKEN_FILE"
	EnvRedisURL     = "REDIS_URL"
	EnvSessionKey   = "STOREFRONT_SESSION_KEY"
	EnvTracing      = "STOREFRONT_TRACING"
	EnvKeepUnused   = "STOREFRONT_CACHE_KEEP_UNUSED"
)

// Config is the frontend configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
	Cache    CacheConfig    `yaml:"cache"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
}

type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Tracing   bool   `yaml:"tracing"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// SessionConfig selects the token store. RedisURL wins over TokenFile;
// with neither set the CLI uses the default token file.
type SessionConfig struct {
	TokenFile string `yaml:"token_file"`
	RedisURL  string `yaml:"redis_url"`
	// Key names the session in Redis.
	Key string        `yaml:"key"`
	TTL time.Duration `yaml:"ttl"`
}

type CacheConfig struct {
	// KeepUnused is how long an entry without subscribers stays cached.
	// Zero evicts immediately, a negative value never evicts.
	KeepUnused time.Duration `yaml:"keep_unused"`
	// MaxAge marks settled entries stale after this long. Zero disables.
	MaxAge time.Duration `yaml:"max_age"`
}

type PrefetchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	pf := prefetch.DefaultConfig()
	return Config{
		API: APIConfig{
			BaseURL:   client.DefaultBaseURL,
			UserAgent: "storefront-cli/0.1.0",
		},
		Log: LogConfig{Level: string(logging.LevelDisabled)},
		Session: SessionConfig{
			Key: "default",
			TTL: 7 * 24 * time.Hour,
		},
		Cache:    CacheConfig{KeepUnused: cache.DefaultKeepUnused},
		Prefetch: PrefetchConfig{Concurrency: pf.MaxConcurrency, Timeout: pf.Timeout},
	}
}

// Load builds the configuration from defaults, the file named by
// STOREFRONT_CONFIG and the environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile builds the configuration from defaults and path only.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str(EnvPublicAPIURL, &c.API.BaseURL)
	str(EnvAPIURL, &c.API.BaseURL)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvTokenFile, &c.Session.TokenFile)
	str(EnvRedisURL, &c.Session.RedisURL)
	str(EnvSessionKey, &c.Session.Key)

	if err := boolean(EnvLogPretty, &c.Log.Pretty); err != nil {
		return err
	}
	if err := boolean(EnvTracing, &c.API.Tracing); err != nil {
		return err
	}
	if v, ok := lookup(EnvKeepUnused); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKeepUnused, err)
		}
		c.Cache.KeepUnused = d
	}
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.API.BaseURL)
	switch {
	case c.API.BaseURL == "":
		errs = append(errs, errors.New("api.base_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api.base_url: unsupported scheme %q", u.Scheme))
	}
	if c.Session.RedisURL != "" && strings.TrimSpace(c.Session.Key) == "" {
		errs = append(errs, errors.New("session.key is required with a Redis store"))
	}
	if c.Prefetch.Concurrency < 0 {
		errs = append(errs, errors.New("prefetch.concurrency must not be negative"))
	}
	return errors.Join(errs...)
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// CacheOptions returns the store options.
func (c Config) CacheOptions() []cache.Option {
	opts := []cache.Option{cache.WithKeepUnused(c.Cache.KeepUnused)}
	if c.Cache.MaxAge > 0 {
		opts = append(opts, cache.WithMaxAge(c.Cache.MaxAge))
	}
	return opts
}

// Prefetcher returns the prefetcher configuration.
func (c Config) Prefetcher() prefetch.Config {
	return prefetch.Config{MaxConcurrency: c.Prefetch.Concurrency, Timeout: c.Prefetch.Timeout}
}
