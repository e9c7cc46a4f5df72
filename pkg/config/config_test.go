package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty without a file", cfg.Path)
	}
	if cfg.Server.Addr != ":6969" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.DisableMetrics {
		t.Error("metrics disabled by default")
	}
	if cfg.Store.Backend != "file" || cfg.Cache.Backend != "file" {
		t.Errorf("backends = %q, %q", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if cfg.Catalog.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.Catalog.CacheTTL)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Mongo.Database != "pidforge" {
		t.Errorf("redis/mongo defaults = %+v %+v", cfg.Redis, cfg.Mongo)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":7000"
disable_metrics = true

[catalog]
source = "https://plant.example.com"
cache_ttl = "6h"

[store]
backend = "redis"

[redis]
addr = "redis.internal:6379"
db = 2
`)
	t.Setenv("PIDFORGE_ADDR", ":8000")
	t.Setenv("PIDFORGE_REDIS_PASSWORD", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if !cfg.Server.DisableMetrics {
		t.Error("disable_metrics from file ignored")
	}
	if !cfg.Catalog.Remote() || cfg.Catalog.CacheTTL != 6*time.Hour {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}

	opts := cfg.StoreOptions()
	if opts.Backend != "redis" || opts.RedisAddr != "redis.internal:6379" || opts.RedisDB != 2 {
		t.Errorf("StoreOptions = %+v", opts)
	}
	if opts.RedisPassword != "hunter2" {
		t.Error("redis password not taken from the environment")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !pferrors.Is(err, pferrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"store backend", "[store]\nbackend = \"sqlite\"\n"},
		{"cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"log level", "[log]\nlevel = \"loud\"\n"},
		{"syntax", "[server\naddr = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); !pferrors.Is(err, pferrors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestCatalogRemote(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"", false},
		{"catalog.toml", false},
		{"http://localhost:6969", true},
		{"https://plant.example.com", true},
	}
	for _, tt := range tests {
		if got := (CatalogConfig{Source: tt.source}).Remote(); got != tt.want {
			t.Errorf("Remote(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}
