package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdem(t *testing.T) (Idem, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Hour}, mr
}

func post(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	req = req.WithContext(WithUserID(req.Context(), "admin-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdemRejectsReplay(t *testing.T) {
	idem, mr := newIdem(t)
	calls := 0
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	require.Equal(t, http.StatusCreated, post(h, "k1").Code)
	replay := post(h, "k1")
	require.Equal(t, http.StatusConflict, replay.Code)
	require.Contains(t, replay.Body.String(), CodeIdempotentReplay)
	require.Equal(t, http.StatusCreated, post(h, "k2").Code)
	require.Equal(t, http.StatusCreated, post(h, "").Code)
	require.Equal(t, 3, calls)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	require.Equal(t, time.Hour, mr.TTL(keys[0]))
}

func TestIdemReleasesKeyOnFailure(t *testing.T) {
	idem, mr := newIdem(t)
	status := http.StatusBadRequest
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	require.Equal(t, http.StatusBadRequest, post(h, "retry-me").Code)
	require.Empty(t, mr.Keys())

	status = http.StatusCreated
	require.Equal(t, http.StatusCreated, post(h, "retry-me").Code)
	require.Equal(t, http.StatusConflict, post(h, "retry-me").Code)
}
