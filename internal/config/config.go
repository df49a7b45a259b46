package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"offline-gateway/internal/models"
)

// MemoryStoreConfig configures the in-memory cache store backend.
type MemoryStoreConfig struct {
	Enabled bool `yaml:"enabled"`
	SizeMB  int  `yaml:"size_mb"` // hard cap per namespace, in MB
}

// RedisStoreConfig configures the redis cache store backend.
type RedisStoreConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URL          string        `yaml:"url" env:"REDIS_URL"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RouterConfig configures request classification and the cache lifecycle.
type RouterConfig struct {
	// CacheVersion is bumped on every release; the two active namespace
	// names are derived from it and everything else is purged on activation.
	CacheVersion string `yaml:"cache_version" env:"CACHE_VERSION"`

	// APIPrefix routes matching requests to the network-first strategy.
	APIPrefix string `yaml:"api_prefix"`

	// StaticExtensions is the file extension set treated as immutable
	// build assets (cache-first).
	StaticExtensions []string `yaml:"static_extensions"`

	// PrecacheManifest is the fixed list of paths seeded into the static
	// namespace at install time. Install fails unless every one succeeds.
	PrecacheManifest []string `yaml:"precache_manifest"`

	// FetchTimeout bounds each upstream fetch issued by a strategy.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// PushConfig configures the push subscription manager.
type PushConfig struct {
	// ServerKey is the public key identifying this server to the push
	// service (VAPID public key).
	ServerKey string `yaml:"server_key" env:"PUSH_SERVER_KEY"`

	// BackendURL is the base URL of the notification store API.
	BackendURL string `yaml:"backend_url" env:"PUSH_BACKEND_URL"`

	// DefaultIcon and DefaultBadge are applied to notifications whose
	// payload does not carry its own.
	DefaultIcon  string `yaml:"default_icon"`
	DefaultBadge string `yaml:"default_badge"`

	// RequestTimeout bounds each backend persistence call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Config represents the main configuration structure
type Config struct {
	ListenAddr  string            `yaml:"listen_addr" env:"LISTEN_ADDR"`
	UpstreamURL string            `yaml:"upstream_url" env:"UPSTREAM_URL"`
	Router      RouterConfig      `yaml:"router"`
	Memory      MemoryStoreConfig `yaml:"memory"`
	Redis       RedisStoreConfig  `yaml:"redis"`
	Push        PushConfig        `yaml:"push"`
}

// LoadConfig loads configuration from the YAML file at configPath, applies
// defaults and environment overrides, and validates the result.
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	config.applyDefaults()

	// Environment variables win over file values
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Router.CacheVersion == "" {
		c.Router.CacheVersion = "v1"
	}
	if c.Router.APIPrefix == "" {
		c.Router.APIPrefix = "/api/"
	}
	if len(c.Router.StaticExtensions) == 0 {
		c.Router.StaticExtensions = []string{
			".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg",
			".webp", ".woff", ".woff2", ".ttf", ".eot", ".ico",
		}
	}
	if len(c.Router.PrecacheManifest) == 0 {
		c.Router.PrecacheManifest = []string{
			"/", "/index.html", "/manifest.json", "/logo.png",
		}
	}
	if c.Router.FetchTimeout == 0 {
		c.Router.FetchTimeout = 30 * time.Second
	}
	if !c.Memory.Enabled && !c.Redis.Enabled {
		c.Memory.Enabled = true
	}
	if c.Memory.SizeMB == 0 {
		c.Memory.SizeMB = 64
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 500 * time.Millisecond
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = time.Second
	}
	if c.Push.RequestTimeout == 0 {
		c.Push.RequestTimeout = 10 * time.Second
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.UpstreamURL == "" {
		return fmt.Errorf("upstream_url is required")
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream_url %q is not a valid absolute URL", c.UpstreamURL)
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when the redis store is enabled")
	}
	return nil
}

// StaticNamespace returns the versioned name of the static namespace.
func (c *RouterConfig) StaticNamespace() string {
	return models.NamespaceStatic + "-" + c.CacheVersion
}

// DynamicNamespace returns the versioned name of the dynamic namespace.
func (c *RouterConfig) DynamicNamespace() string {
	return models.NamespaceDynamic + "-" + c.CacheVersion
}
