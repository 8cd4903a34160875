package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DmitryDemura/taskforge/cache"
	"github.com/DmitryDemura/taskforge/internal/cacheinfra"
	"github.com/DmitryDemura/taskforge/internal/config"
	"github.com/DmitryDemura/taskforge/internal/storeinfra"
	"github.com/DmitryDemura/taskforge/tasks"
)

// Container provides dependency injection for the task service and its
// backends. It resolves the cache once at construction (redis when reachable,
// in-memory otherwise), opens the configured store, and owns the lifetime of
// both: Close releases everything the container created.
type Container struct {
	config  config.Config
	log     *zap.Logger
	cache   cache.Store
	backend cacheinfra.Backend
	store   tasks.Store
	service *tasks.Service
}

// HealthStatus is the payload reported by Health.
type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	CacheBackend string    `json:"cacheBackend"`
	Cache        string    `json:"cache"`
}

// NewContainer creates a new DI container from the provided configuration.
// Cache backend resolution is terminal: whatever Connect decides here holds
// for the container's lifetime.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	log, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	kv, backend, err := cacheinfra.Connect(ctx, cfg.Cache, log)
	if err != nil {
		return nil, fmt.Errorf("cache bootstrap: %w", err)
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	if cfg.Store.Seed {
		if err := storeinfra.Seed(ctx, store); err != nil {
			_ = store.Close()
			_ = kv.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}

	return &Container{
		config:  cfg,
		log:     log,
		cache:   kv,
		backend: backend,
		store:   store,
		service: tasks.NewServiceTTL(store, kv, log, cfg.Cache.ListTTL, cfg.Cache.EntityTTL),
	}, nil
}

// NewContainerWithDefaults creates a container from the default configuration:
// memory store, cache bootstrap walking the local redis candidates. This is a
// convenience constructor for examples and tests.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Default())
}

// Service returns the task service instance.
func (c *Container) Service() *tasks.Service {
	return c.service
}

// Store returns the persistence backend.
func (c *Container) Store() tasks.Store {
	return c.store
}

// Cache returns the resolved cache store.
func (c *Container) Cache() cache.Store {
	return c.cache
}

// CacheBackend reports which cache implementation the bootstrap resolved.
func (c *Container) CacheBackend() cacheinfra.Backend {
	return c.backend
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.log
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Health reports liveness of the container's backends. The in-memory cache
// always pings fine, so "disconnected" only ever shows up with a redis
// backend that went away after bootstrap.
func (c *Container) Health(ctx context.Context) HealthStatus {
	cacheState := "connected"
	if err := c.cache.Ping(ctx); err != nil {
		cacheState = "disconnected"
	}
	return HealthStatus{
		Status:       "ok",
		Timestamp:    time.Now().UTC(),
		CacheBackend: string(c.backend),
		Cache:        cacheState,
	}
}

// Close releases the store and the cache. The logger is flushed last.
func (c *Container) Close() error {
	storeErr := c.store.Close()
	cacheErr := c.cache.Close()
	_ = c.log.Sync()

	if storeErr != nil {
		return storeErr
	}
	return cacheErr
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (tasks.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := storeinfra.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return storeinfra.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
