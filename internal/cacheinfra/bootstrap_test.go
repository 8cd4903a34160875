package cacheinfra

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DmitryDemura/taskforge/cache"
)

// closedPort reserves a port and releases it so connection attempts against
// it are refused quickly.
func closedPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func TestConnect_InvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Port = 0

	_, _, err := Connect(context.Background(), cfg, zap.NewNop())
	if err == nil {
		t.Fatal("Connect() with invalid config returned nil error")
	}
}

func TestConnect_FallsBackWhenHostUnreachable(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = closedPort(t)
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0

	store, backend, err := Connect(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if backend != BackendMemory {
		t.Fatalf("Connect() backend = %v, want %v", backend, BackendMemory)
	}

	// The fallback must be usable as a drop-in.
	ctx := context.Background()
	if err := store.SetTTL(ctx, "task:1", "snapshot", time.Minute); err != nil {
		t.Fatalf("fallback SetTTL() error = %v", err)
	}
	value, ok, err := store.Get(ctx, "task:1")
	if err != nil || !ok || value != "snapshot" {
		t.Errorf("fallback Get() = %q, %v, %v; want snapshot, true, nil", value, ok, err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("fallback Ping() = %v, want nil", err)
	}
}

func TestConnect_FallsBackWhenURLUnreachable(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.URL = fmt.Sprintf("redis://127.0.0.1:%d/0", closedPort(t))
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0

	_, backend, err := Connect(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if backend != BackendMemory {
		t.Errorf("Connect() backend = %v, want %v", backend, BackendMemory)
	}
}

func TestConnect_FallsBackOnMalformedURL(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.URL = "not-a-redis-url"

	_, backend, err := Connect(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if backend != BackendMemory {
		t.Errorf("Connect() backend = %v, want %v", backend, BackendMemory)
	}
}
