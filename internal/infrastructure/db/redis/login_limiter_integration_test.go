//go:build integration
// +build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLoginLimiter_BlocksAtThreshold(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	l := NewLoginLimiter(client, 3, time.Minute)
	email := uuid.NewString() + "@bank.io"
	t.Cleanup(func() { _ = client.Del(ctx, l.key(email)).Err() })

	for i := 0; i < 3; i++ {
		ok, err := l.Allowed(ctx, email)
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allowed, got %v, %v", i, ok, err)
		}
		if err := l.RecordFailure(ctx, email); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	ok, err := l.Allowed(ctx, email)
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if ok {
		t.Fatal("expected email to be blocked after 3 failures")
	}

	n, err := client.Get(ctx, l.key(email)).Int()
	if err != nil || n != 3 {
		t.Fatalf("expected counter 3, got %d, %v", n, err)
	}
	ttl, err := client.TTL(ctx, l.key(email)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected counter to expire within the window, got %s, %v", ttl, err)
	}

	if err := l.Reset(ctx, email); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allowed(ctx, email); !ok {
		t.Fatal("expected email to be allowed after reset")
	}
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	l := NewLoginLimiter(client, 1, time.Second)
	email := uuid.NewString() + "@bank.io"

	if err := l.RecordFailure(ctx, email); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if ok, _ := l.Allowed(ctx, email); ok {
		t.Fatal("expected email to be blocked inside the window")
	}

	time.Sleep(1500 * time.Millisecond)
	if ok, err := l.Allowed(ctx, email); err != nil || !ok {
		t.Fatalf("expected email to be allowed once the window elapsed, got %v, %v", ok, err)
	}
}
