package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/DmitryDemura/taskforge/cache"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	App   AppConfig
	Cache cache.Config
	Store StoreConfig
}

type AppConfig struct {
	Env string `env:"APP_ENV" env-default:"dev"`
}

type StoreConfig struct {
	// Driver selects the persistence backend: memory or sqlite.
	Driver string `env:"STORE_DRIVER" env-default:"memory"`

	// DSN is the sqlite data source. Ignored by the memory driver.
	DSN string `env:"STORE_DSN" env-default:"file:taskforge.db?_fk=1"`

	// Seed inserts demo tasks into an empty store on startup.
	Seed bool `env:"STORE_SEED" env-default:"false"`
}

// Load reads configuration from the environment. The zero environment is
// runnable: memory store, cache bootstrap walking the local candidates.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.Store.Driver != DriverMemory && cfg.Store.Driver != DriverSQLite {
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMemory, DriverSQLite, cfg.Store.Driver)
	}
	if err := cfg.Cache.Validate(); err != nil {
		return Config{}, fmt.Errorf("cache config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration Load would produce from an empty
// environment.
func Default() Config {
	return Config{
		App:   AppConfig{Env: "dev"},
		Cache: cache.DefaultConfig(),
		Store: StoreConfig{
			Driver: DriverMemory,
			DSN:    "file:taskforge.db?_fk=1",
		},
	}
}
