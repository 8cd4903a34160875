package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks connection-level cache failures. Implementations wrap
// it so callers can distinguish "the backend is unreachable" from a plain
// logical miss; the service layer treats the former as a miss and falls
// through to the store.
var ErrUnavailable = errors.New("cache unavailable")

// Store is the minimal key-value contract shared by the networked backend and
// the in-memory fallback. Logical misses are never errors: Get reports them
// through its ok result and Exists through its bool, both with a nil error.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key without an expiry.
	Set(ctx context.Context, key, value string) error

	// SetTTL stores value under key and expires it ttl after the call.
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// ScanKeys returns all keys matching pattern. Pattern follows glob
	// semantics: '*' matches any run of characters, '?' a single character,
	// everything else is literal.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks backend liveness. Used for health reporting only.
	Ping(ctx context.Context) error

	// Close releases any underlying connections.
	Close() error
}
