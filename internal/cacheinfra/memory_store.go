package cacheinfra

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// memoryEntry is a stored value with an optional expiry. A zero expiresAt
// means the entry never expires.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is the in-process fallback cache. It emulates the subset of
// key-value behaviour the service relies on: per-key TTL expiry, glob
// pattern scans, and an always-healthy Ping. Nothing survives a process
// restart; that is the documented trade-off of running without redis.
//
// Expiry is lazy on Get/Exists. ScanKeys additionally sweeps every expired
// entry first so stale keys never show up in scan results.
type MemoryStore struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryStore creates an empty fallback cache using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a fallback cache with an injectable clock.
// Tests use this to simulate TTL expiry without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: xsync.NewMapOf[string, memoryEntry](),
		now:     now,
	}
}

// Get returns the value stored under key, evicting it first if expired.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, ok := m.entries.Load(key)
	if !ok {
		return "", false, nil
	}
	if m.expired(entry) {
		m.entries.Delete(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key with no expiry.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.entries.Store(key, memoryEntry{value: value})
	return nil
}

// SetTTL stores value under key, expiring ttl after the call.
func (m *MemoryStore) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	m.entries.Store(key, memoryEntry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

// Delete removes the given keys and returns how many were present.
func (m *MemoryStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	for _, key := range keys {
		if _, ok := m.entries.LoadAndDelete(key); ok {
			removed++
		}
	}
	return removed, nil
}

// Exists reports whether key is present and unexpired.
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

// ScanKeys returns all live keys matching the glob pattern. Expired entries
// are pruned eagerly first.
func (m *MemoryStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	m.pruneExpired()

	re, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}

	var keys []string
	m.entries.Range(func(key string, _ memoryEntry) bool {
		if re.MatchString(key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, nil
}

// Ping always succeeds; there is no network dependency. This is what makes
// the fallback a drop-in for the networked backend.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !entry.expiresAt.After(m.now())
}

func (m *MemoryStore) pruneExpired() {
	var stale []string
	m.entries.Range(func(key string, entry memoryEntry) bool {
		if m.expired(entry) {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		m.entries.Delete(key)
	}
}

// globToRegexp translates a glob pattern to an anchored regexp: every
// character is escaped except '*' (any run) and '?' (single character).
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `.*`)
	escaped = strings.ReplaceAll(escaped, `\?`, `.`)
	return regexp.Compile(`^` + escaped + `$`)
}
