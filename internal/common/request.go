package common

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ClientIP returns the host part of r.RemoteAddr. Behind a proxy, chi's RealIP
// middleware is expected to have rewritten RemoteAddr from X-Forwarded-For.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// QueryInt reads an integer query parameter, returning def when it is missing or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return def
	}
	return v
}
