// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

var draining atomic.Bool

// SetReady flips readiness. The API clears it when shutdown starts.
func SetReady(v bool) { draining.Store(!v) }

// Checker pings the backing stores.
type Checker interface {
	PingDB(ctx context.Context) error
	PingRedis(ctx context.Context) error
}

// Probe is the production Checker.
type Probe struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func (p Probe) PingDB(ctx context.Context) error { return p.DB.Ping(ctx) }

func (p Probe) PingRedis(ctx context.Context) error { return p.Redis.Ping(ctx).Err() }

// Handler serves /health/live and /health/ready.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Report is the readiness body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, Report{Status: "ok"})
}

// Ready pings the database and Redis concurrently. Failures are reported as
// "unavailable" with no error detail.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil || draining.Load() {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "unavailable"})
		return
	}

	var dbErr, redisErr error
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		dbErr = ping(ctx, or(h.DBTimeout, 500*time.Millisecond), h.Checker.PingDB)
		return nil
	})
	g.Go(func() error {
		redisErr = ping(ctx, or(h.RedisTimeout, 300*time.Millisecond), h.Checker.PingRedis)
		return nil
	})
	_ = g.Wait()

	rep := Report{Status: "ready", Checks: map[string]string{"db": "ok", "redis": "ok"}}
	code := http.StatusOK
	if dbErr != nil {
		rep.Checks["db"] = "unavailable"
	}
	if redisErr != nil {
		rep.Checks["redis"] = "unavailable"
	}
	if dbErr != nil || redisErr != nil {
		rep.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, rep)
}

func ping(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func or(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
