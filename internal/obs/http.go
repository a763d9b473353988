package obs

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func wrap(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += int64(n)
	return n, err
}

func (rw *recorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// HTTPObs records request counts, latency and in-flight requests.
type HTTPObs struct {
	Metrics *HTTPMetrics
}

func (o HTTPObs) Middleware(next http.Handler) http.Handler {
	if o.Metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrap(w)
		o.Metrics.InFlight.Inc()
		defer o.Metrics.InFlight.Dec()

		start := time.Now()
		next.ServeHTTP(rw, r)

		route := Route(r, "unmatched")
		o.Metrics.ReqTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		o.Metrics.ReqDur.WithLabelValues(r.Method, route).Observe(millis(time.Since(start)))
	})
}

// TracingMiddleware wraps the router with otelhttp. The span is renamed to the
// matched chi pattern once the handler returns.
func TracingMiddleware(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrap(w)
		next.ServeHTTP(rw, r)

		span := trace.SpanFromContext(r.Context())
		route := Route(r, "")
		if route != "" {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		if rw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rw.status))
		}
	})
	return otelhttp.NewHandler(inner, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
