package security

import (
	"net/http"
	"strconv"
)

// Headers sets response hardening headers. Admin responses carry customer data, so
// NoStore disables caching for the routes it wraps.
type Headers struct {
	HSTS       bool
	HSTSMaxAge int
	NoStore    bool
}

// Middleware attaches the configured headers before delegating.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		if h.NoStore {
			headers.Set("Cache-Control", "no-store")
		}
		if h.HSTS && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
			maxAge := h.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = 31536000
			}
			headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(maxAge)+"; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
