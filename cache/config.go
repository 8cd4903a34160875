package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default TTLs for the two key families. List snapshots expire faster than
// entity snapshots because any mutation already sweeps them.
const (
	DefaultListTTL   = 5 * time.Minute
	DefaultEntityTTL = 10 * time.Minute
)

// Config controls how the cache backend is resolved at startup and which
// TTLs the service applies to its two key families. Env tags follow the
// conventional REDIS_* variables.
type Config struct {
	// URL, when set, is the single connection target (redis:// or rediss://).
	// It takes precedence over Host/Port and is attempted exactly once.
	URL string `env:"REDIS_URL" env-default:""`

	// Host overrides the candidate host list. When empty, the bootstrap
	// walks the conventional local aliases instead.
	Host string `env:"REDIS_HOST" env-default:""`

	// Port used for every host candidate.
	Port int `env:"REDIS_PORT" env-default:"6379"`

	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`

	// DialTimeout bounds each connection attempt.
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"2s"`

	// MaxRetries is the internal per-attempt retry budget of the client.
	MaxRetries int `env:"REDIS_MAX_RETRIES" env-default:"3"`

	// ListTTL expires cached list envelopes (tasks:* keys).
	ListTTL time.Duration `env:"CACHE_LIST_TTL" env-default:"5m"`

	// EntityTTL expires cached single-task snapshots (task:<id> keys).
	EntityTTL time.Duration `env:"CACHE_ENTITY_TTL" env-default:"10m"`
}

// DefaultConfig returns a Config with sensible defaults: no fixed URL or
// host, conventional port, short dial timeout, spec TTLs.
func DefaultConfig() Config {
	return Config{
		Port:        6379,
		DialTimeout: 2 * time.Second,
		MaxRetries:  3,
		ListTTL:     DefaultListTTL,
		EntityTTL:   DefaultEntityTTL,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DialTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.ListTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.EntityTTL, validation.Required, validation.Min(time.Second)),
	)
}
