package redis

import (
	"testing"
	"time"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(Config{Addr: "cache:6380", Username: "bank", Password: "pw", DB: 2})
	if opts.Addr != "cache:6380" || opts.Username != "bank" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got %s/%s", opts.DialTimeout, opts.ReadTimeout)
	}
	if opts.TLSConfig != nil {
		t.Fatal("expected plain TCP without TLS")
	}

	opts = clientOptions(Config{Addr: "cache:6380", TLS: true, Timeout: time.Second})
	if opts.TLSConfig == nil {
		t.Fatal("expected TLS config")
	}
	if opts.WriteTimeout != time.Second {
		t.Fatalf("expected 1s timeout, got %s", opts.WriteTimeout)
	}
}
