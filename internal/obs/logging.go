package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomitechltd/ZINEB/internal/common"
)

// NewLogger returns a stdout logger. format "console" (or "text") selects the
// human readable writer; anything else logs JSON. Unknown levels fall back to info.
func NewLogger(format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// RequestLogger writes one "http_request" entry per request: error level for
// 5xx, warn for 4xx, info otherwise.
type RequestLogger struct {
	Logger zerolog.Logger
}

func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		var evt *zerolog.Event
		switch {
		case rw.status >= http.StatusInternalServerError:
			evt = l.Logger.Error()
		case rw.status >= http.StatusBadRequest:
			evt = l.Logger.Warn()
		default:
			evt = l.Logger.Info()
		}
		evt = evt.
			Str("method", r.Method).
			Str("route", Route(r, r.URL.Path)).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Int64("bytes", rw.bytes)
		if id := middleware.GetReqID(r.Context()); id != "" {
			evt = evt.Str("request_id", id)
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if uid, ok := common.UserID(r.Context()); ok && uid != "" {
			evt = evt.Str("user_id", uid)
		}
		if ip := common.ClientIP(r); ip != "" {
			evt = evt.Str("client_ip", ip)
		}
		if ua := r.UserAgent(); ua != "" {
			evt = evt.Str("user_agent", ua)
		}
		evt.Msg("http_request")
	})
}
