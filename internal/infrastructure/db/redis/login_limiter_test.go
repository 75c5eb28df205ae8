package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLoginLimiter_DisabledAlwaysAllows(t *testing.T) {
	l := NewLoginLimiter(nil, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := l.RecordFailure(ctx, "a@b.com"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	ok, err := l.Allowed(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("expected allowed with nil error, got %v, %v", ok, err)
	}
	if err := l.Reset(ctx, "a@b.com"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func TestLoginLimiter_Key(t *testing.T) {
	l := NewLoginLimiter(nil, 5, time.Minute)
	if got := l.key("a@b.com"); got != "login_failures:a@b.com" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLoginLimiter_UnreachableServerFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewLoginLimiter(client, 3, time.Minute)
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "a@b.com"); err == nil {
		t.Fatal("expected RecordFailure to report the connection error")
	}
	ok, err := l.Allowed(ctx, "a@b.com")
	if err == nil {
		t.Fatal("expected Allowed to report the connection error")
	}
	if !ok {
		t.Fatal("expected the attempt to be allowed when Redis is unreachable")
	}
}
