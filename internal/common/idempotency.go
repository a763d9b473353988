package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// CodeIdempotentReplay is returned for a repeated Idempotency-Key.
const CodeIdempotentReplay = "IDEMPOTENT_REPLAY"

// Idem provides an Idempotency-Key middleware backed by Redis. Keys are scoped by
// method, path and the authenticated user.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func hashKey(r *http.Request, key string) string {
	scope := r.Method + " " + r.URL.Path
	if id, ok := UserID(r.Context()); ok {
		scope += " " + id
	}
	sum := sha256.Sum256([]byte(scope + " " + key))
	return "idem:" + hex.EncodeToString(sum[:])
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware lets the first request with a key through and answers 409 to repeats
// until TTL expires. A request that ends in an error status releases its key so the
// client can retry it.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := hashKey(r, header)
		ok, err := i.R.SetNX(r.Context(), key, "locked", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, CodeInternal, "idempotency store error", nil)
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, CodeIdempotentReplay, "Duplicate request", nil)
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if sw.status >= http.StatusBadRequest {
				_ = i.R.Del(context.Background(), key).Err()
			}
		}()
		next.ServeHTTP(sw, r)
	})
}
