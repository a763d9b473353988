package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func TestSlidingWindowAllow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := SlidingWindow{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if remaining != max-(i+1) {
			t.Fatalf("unexpected remaining: %d", remaining)
		}
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected third request to be rejected")
	}
	if remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !allowed {
		t.Fatal("expected request after window to be allowed")
	}
}

func TestFixedWindowAllow(t *testing.T) {
	limiter := FixedWindow{Store: memory.NewStore()}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, reset, err := limiter.Allow(ctx, "catalog:203.0.113.7", time.Minute, 3)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("unexpected remaining %d", remaining)
		}
		if !reset.After(time.Now()) {
			t.Fatalf("expected reset in the future, got %s", reset)
		}
	}
	allowed, _, _, err := limiter.Allow(ctx, "catalog:203.0.113.7", time.Minute, 3)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected fourth request to be rejected")
	}
	allowed, _, _, _ = limiter.Allow(ctx, "catalog:198.51.100.1", time.Minute, 3)
	if !allowed {
		t.Fatal("expected other keys to be unaffected")
	}
}

func TestMiddlewareByIP(t *testing.T) {
	handler := Handler{
		Limiter: FixedWindow{Store: memory.NewStore()},
		Config:  Config{Key: ByIP("destinations"), Window: time.Minute, Max: 1},
	}
	next := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/api/v1/destinations/jp", nil)
	first.RemoteAddr = "203.0.113.7:5000"
	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	next.ServeHTTP(rec, first.Clone(first.Context()))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON error, got %q", ct)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/destinations/jp", nil)
	other.RemoteAddr = "198.51.100.1:5000"
	rec = httptest.NewRecorder()
	next.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other client allowed, got %d", rec.Code)
	}
}
