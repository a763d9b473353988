package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecomitechltd/ZINEB/internal/health"
)

type checker struct {
	db, redis func(context.Context) error
}

func (c checker) PingDB(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db(ctx)
}

func (c checker) PingRedis(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis(ctx)
}

func ready(t *testing.T, h health.Handler) (int, health.Report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var rep health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	return rec.Code, rep
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	health.Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	code, rep := ready(t, health.Handler{Checker: checker{}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", rep.Status)
	require.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, rep.Checks)
}

func TestReadyReportsFailingStore(t *testing.T) {
	down := func(context.Context) error { return errors.New("dial tcp 10.0.0.5:5432: connection refused") }
	code, rep := ready(t, health.Handler{Checker: checker{db: down}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", rep.Checks["db"])
	require.Equal(t, "ok", rep.Checks["redis"])
}

func TestReadyAppliesTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h := health.Handler{Checker: checker{redis: slow}, RedisTimeout: 10 * time.Millisecond}
	code, rep := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", rep.Checks["redis"])
}

func TestReadyWhileDraining(t *testing.T) {
	h := health.Handler{Checker: checker{}}
	health.SetReady(false)
	t.Cleanup(func() { health.SetReady(true) })

	code, rep := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", rep.Status)
	require.Nil(t, rep.Checks)
}
