package ratelimit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestStorefrontLimitPerStrategy(t *testing.T) {
	for _, strategy := range []string{ratelimit.StrategySliding, ratelimit.StrategyFixed} {
		t.Run(strategy, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })

			limiter, err := ratelimit.New(strategy, rdb)
			require.NoError(t, err)
			h := ratelimit.Handler{
				Limiter: limiter,
				Config:  ratelimit.Config{Key: ratelimit.ByIP("storefront"), Window: time.Minute, Max: 2},
			}.Middleware(okHandler())

			send := func() *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil)
				req.RemoteAddr = "203.0.113.9:41000"
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				return rec
			}

			first := send()
			require.Equal(t, http.StatusOK, first.Code)
			require.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
			require.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
			require.Equal(t, http.StatusOK, send().Code)

			blocked := send()
			require.Equal(t, http.StatusTooManyRequests, blocked.Code)
			require.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
			retry, err := strconv.Atoi(blocked.Header().Get("Retry-After"))
			require.NoError(t, err)
			require.LessOrEqual(t, retry, 60)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &body))
			require.Equal(t, "RATE_LIMITED", body.Error.Code)
		})
	}
}

func TestLimiterErrorFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	var reported error
	h := ratelimit.Handler{
		Limiter: ratelimit.SlidingWindow{Client: rdb, Prefix: "ratelimit:"},
		Config:  ratelimit.Config{Key: ratelimit.ByIP("storefront"), Window: time.Minute, Max: 1},
		OnError: func(err error) { reported = err },
	}.Middleware(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Error(t, reported)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestMissingKeyFuncBypasses(t *testing.T) {
	h := ratelimit.Handler{Limiter: ratelimit.SlidingWindow{}}.Middleware(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
