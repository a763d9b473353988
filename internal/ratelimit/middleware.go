package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

// Strategies accepted by New.
const (
	StrategySliding = "sliding"
	StrategyFixed   = "fixed"
)

// Limiter decides whether one more event for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// New returns the limiter for strategy, defaulting to the sliding window.
func New(strategy string, rdb *redis.Client) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyFixed:
		store, err := NewRedisStore(rdb, "ratelimit:fixed")
		if err != nil {
			return nil, err
		}
		return FixedWindow{Store: store}, nil
	default:
		return SlidingWindow{Client: rdb, Prefix: "ratelimit:"}, nil
	}
}

// Config picks the bucket for a request and its allowance per Window.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// ByIP buckets requests by client address under name.
func ByIP(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		return name + ":" + common.ClientIP(r)
	}
}

// Handler rejects requests over the limit with 429 RATE_LIMITED. When the
// limiter itself fails the request goes through and OnError is told.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil || h.Config.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, reset, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}
		setHeaders(w.Header(), max(h.Config.Max, 0), remaining, reset)
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		wait := time.Until(reset).Round(time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(int(max(wait, 0)/time.Second)))
		common.JSONError(w, http.StatusTooManyRequests, CodeRateLimited, "Too many requests", nil)
	})
}

// CodeRateLimited is the error code of a rejected request.
const CodeRateLimited = "RATE_LIMITED"

func setHeaders(h http.Header, limit, remaining int, reset time.Time) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
