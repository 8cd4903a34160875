package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Errorf("App.Env = %q, want dev", cfg.App.Env)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	if cfg.Store.Seed {
		t.Error("Store.Seed should default to false")
	}
	if cfg.Cache.Port != 6379 {
		t.Errorf("Cache.Port = %d, want 6379", cfg.Cache.Port)
	}
	if cfg.Cache.ListTTL != 5*time.Minute || cfg.Cache.EntityTTL != 10*time.Minute {
		t.Errorf("TTLs = %v/%v, want 5m/10m", cfg.Cache.ListTTL, cfg.Cache.EntityTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_SEED", "true")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("CACHE_LIST_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Driver != DriverSQLite || !cfg.Store.Seed {
		t.Errorf("Store = %+v, want sqlite with seed", cfg.Store)
	}
	if cfg.Cache.Host != "cache.internal" {
		t.Errorf("Cache.Host = %q", cfg.Cache.Host)
	}
	if cfg.Cache.ListTTL != 90*time.Second {
		t.Errorf("Cache.ListTTL = %v, want 90s", cfg.Cache.ListTTL)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown store driver")
	}
}

func TestLoad_RejectsInvalidCacheConfig(t *testing.T) {
	t.Setenv("REDIS_PORT", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an invalid cache port")
	}
}
