package cacheinfra

import (
	"context"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DmitryDemura/taskforge/cache"
)

// Backend identifies which cache implementation the bootstrap resolved.
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// defaultHostCandidates are tried in order when neither a URL nor an explicit
// host override is configured.
var defaultHostCandidates = []string{"127.0.0.1", "localhost", "redis"}

// Connect resolves the cache backend once at process start. With a URL
// configured it makes exactly one attempt; otherwise it walks the host
// candidates at the configured port. The first successful ping wins. When
// every attempt fails it hands back the in-memory fallback, so the
// application degrades instead of failing. The resolution is terminal for
// the process lifetime; a fallback is never re-promoted to redis.
//
// Connection failures are expected and recoverable, so per-candidate errors
// log at debug; only the final fallback decision logs at warn. The returned
// error is non-nil only for an invalid Config.
func Connect(ctx context.Context, cfg cache.Config, log *zap.Logger) (cache.Store, Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	if cfg.URL != "" {
		if store := connectURL(ctx, cfg, log); store != nil {
			log.Info("connected to redis cache", zap.String("source", "url"))
			return store, BackendRedis, nil
		}
	} else {
		hosts := defaultHostCandidates
		if cfg.Host != "" {
			hosts = []string{cfg.Host}
		}
		for _, host := range hosts {
			if store := connectHost(ctx, cfg, host, log); store != nil {
				log.Info("connected to redis cache",
					zap.String("host", host),
					zap.Int("port", cfg.Port))
				return store, BackendRedis, nil
			}
		}
	}

	log.Warn("redis unreachable, falling back to in-memory cache; cached data will not survive restarts")
	return NewMemoryStore(), BackendMemory, nil
}

func connectURL(ctx context.Context, cfg cache.Config, log *zap.Logger) cache.Store {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Debug("invalid redis url", zap.Error(err))
		return nil
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.DialTimeout = cfg.DialTimeout
	return tryClient(ctx, redis.NewClient(opts), cfg, "url", log)
}

func connectHost(ctx context.Context, cfg cache.Config, host string, log *zap.Logger) cache.Store {
	client := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
	})
	return tryClient(ctx, client, cfg, host, log)
}

func tryClient(ctx context.Context, client *redis.Client, cfg cache.Config, target string, log *zap.Logger) cache.Store {
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Debug("redis connection attempt failed",
			zap.String("target", target),
			zap.Error(err))
		_ = client.Close()
		return nil
	}
	return NewRedisStore(client)
}
