// Package cache defines the key-value abstraction the task service caches
// through, plus the canonical key derivation for its two key families.
//
// # Overview
//
// The package exports:
//
//   - Store: a minimal get/set-with-ttl/delete/exists/scan/ping contract that
//     both the redis backend and the in-memory fallback implement identically
//   - ListKey / EntityKey: deterministic cache keys for list queries and
//     single-task snapshots
//   - Config: connection and TTL settings with validation
//
// Callers never know which backend is live; the bootstrap in
// internal/cacheinfra resolves one at process start and hands back a Store.
//
// # Error policy
//
// Logical misses are not errors: an absent or expired key makes Get report
// ok=false and Exists report false, both with a nil error. Connection-level
// failures wrap ErrUnavailable so the orchestration layer can degrade to a
// cache miss instead of failing the request.
//
// # Key derivation
//
// List keys embed the canonical JSON rendering of the whole query, so two
// requests that differ only in parameter ordering share one cache entry:
//
//	key, _ := cache.ListKey(query) // "tasks:{\"page\":1,\"status\":\"done\"}"
//	cache.EntityKey(42)            // "task:42"
//
// CanonicalJSON sorts object keys at every level and preserves array order
// and numeric literals; see keys.go for the exact rules.
package cache
