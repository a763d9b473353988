package obs

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type routeKey struct{}

// WithRoutePattern stores the matched route pattern on ctx.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routeKey{}, pattern)
}

// RoutePatternFromContext returns the pattern stored by WithRoutePattern.
func RoutePatternFromContext(ctx context.Context) string {
	v, _ := ctx.Value(routeKey{}).(string)
	return v
}

// RoutePatternMiddleware copies chi's matched pattern into the request context.
// Chi fills the pattern while routing, so middleware mounted above the router
// should resolve it after next has run via Route.
func RoutePatternMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				r = r.WithContext(WithRoutePattern(r.Context(), p))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Route resolves the templated route for r, falling back to fallback when the
// request did not match any route.
func Route(r *http.Request, fallback string) string {
	if p := RoutePatternFromContext(r.Context()); p != "" {
		return p
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return fallback
}
