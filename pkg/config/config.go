// Package config loads pidforge settings.
//
// Settings come from a TOML file (default ~/.config/pidforge/config.toml)
// with PIDFORGE_* environment variables taking precedence. A missing file is
// not an error; defaults and the environment still apply. Secrets (the redis
// password and the mongo URI) are read from the environment only.
//
// Example config.toml:
//
//	[server]
//	addr = ":6969"
//	disable_metrics = true
//
//	[catalog]
//	source = "https://plant.example.com"
//	cache_ttl = "6h"
//
//	[store]
//	backend = "redis"
//
//	[redis]
//	addr = "redis.internal:6379"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/store"
)

// Config holds all pidforge configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Redis   RedisConfig   `toml:"redis"`
	Mongo   MongoConfig   `toml:"mongo"`
	Log     LogConfig     `toml:"log"`

	// Path is the file the configuration was read from, empty when no file
	// was found.
	Path string `toml:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `toml:"addr" env:"PIDFORGE_ADDR" env-default:":6969"`
	CORSOrigins    []string      `toml:"cors_origins" env:"PIDFORGE_CORS_ORIGINS" env-separator:"," env-default:"*"`
	Timeout        time.Duration `toml:"timeout" env:"PIDFORGE_REQUEST_TIMEOUT" env-default:"30s"`
	DisableMetrics bool          `toml:"disable_metrics" env:"PIDFORGE_DISABLE_METRICS"`
}

// CatalogConfig selects where component definitions come from.
type CatalogConfig struct {
	// Source is empty for the built-in catalog, an http(s) URL of a catalog
	// API, or a path to a TOML or JSON catalog file.
	Source   string        `toml:"source" env:"PIDFORGE_CATALOG"`
	CacheTTL time.Duration `toml:"cache_ttl" env:"PIDFORGE_CATALOG_CACHE_TTL" env-default:"24h"`
}

// Remote reports whether Source names a catalog API.
func (c CatalogConfig) Remote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}

// StoreConfig selects the schematic persistence backend.
type StoreConfig struct {
	Backend string `toml:"backend" env:"PIDFORGE_STORE" env-default:"file"`
	Dir     string `toml:"dir" env:"PIDFORGE_STORE_DIR"`
}

// CacheConfig selects the cache for fetched catalogs.
type CacheConfig struct {
	Backend string `toml:"backend" env:"PIDFORGE_CACHE" env-default:"file"`
	Dir     string `toml:"dir" env:"PIDFORGE_CACHE_DIR"`
}

// RedisConfig is shared by the redis store and cache backends.
type RedisConfig struct {
	Addr     string `toml:"addr" env:"PIDFORGE_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `toml:"-" env:"PIDFORGE_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"PIDFORGE_REDIS_DB" env-default:"0"`
}

// MongoConfig configures the mongo store backend.
type MongoConfig struct {
	URI      string `toml:"-" env:"PIDFORGE_MONGO_URI"`
	Database string `toml:"database" env:"PIDFORGE_MONGO_DATABASE" env-default:"pidforge"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" env:"PIDFORGE_LOG_LEVEL" env-default:"info"`
}

// cacheBackends lists the accepted cache backends.
var cacheBackends = []string{"file", "redis", "none"}

// logLevels lists the accepted log levels.
var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultPath returns ~/.config/pidforge/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "pidforge", "config.toml"), nil
}

// Load reads configuration from path, or from DefaultPath when path is
// empty. Environment variables override file values. An explicitly named
// file must exist; the default file is optional.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, pferrors.Wrap(pferrors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		cfg.Path = path
	case errors.Is(statErr, os.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, pferrors.Wrap(pferrors.ErrCodeInvalidInput, err, "read config from environment")
		}
	default:
		return nil, pferrors.Wrap(pferrors.ErrCodeInvalidInput, statErr, "read config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)

	if !slices.Contains(store.Backends(), c.Store.Backend) {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "store.backend %q: want one of %s",
			c.Store.Backend, strings.Join(store.Backends(), ", "))
	}
	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "cache.backend %q: want one of %s",
			c.Cache.Backend, strings.Join(cacheBackends, ", "))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "log.level %q: want one of %s",
			c.Log.Level, strings.Join(logLevels, ", "))
	}
	if c.Catalog.CacheTTL < 0 {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "catalog.cache_ttl must not be negative")
	}
	return nil
}

// StoreOptions returns the settings for store.Open.
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		Backend:       c.Store.Backend,
		Dir:           c.Store.Dir,
		RedisAddr:     c.Redis.Addr,
		RedisPassword: c.Redis.Password,
		RedisDB:       c.Redis.DB,
		MongoURI:      c.Mongo.URI,
		MongoDatabase: c.Mongo.Database,
	}
}
