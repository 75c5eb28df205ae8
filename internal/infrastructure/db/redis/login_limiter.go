package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

var _ ports.LoginLimiter = (*LoginLimiter)(nil)

// LoginLimiter counts failed logins per email inside a fixed window.
// Key format: login_failures:<email>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

// NewLoginLimiter creates a LoginLimiter. A maxFailures of zero or less disables throttling.
func NewLoginLimiter(client *redis.Client, maxFailures int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxFailures: maxFailures, window: window}
}

// Allowed reports whether another attempt for email may proceed.
func (l *LoginLimiter) Allowed(ctx context.Context, email string) (bool, error) {
	if l.disabled() {
		return true, nil
	}
	n, err := l.client.Get(ctx, l.key(email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("login limiter get: %w", err)
	}
	return n < l.maxFailures, nil
}

// RecordFailure increments the failure counter. The window starts at the
// first failure: the key is created with its TTL and incremented in one
// MULTI/EXEC, so a counter never exists without an expiry.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	key := l.key(email)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLimiter) disabled() bool {
	return l.client == nil || l.maxFailures <= 0
}

func (l *LoginLimiter) key(email string) string {
	return fmt.Sprintf("login_failures:%s", email)
}
