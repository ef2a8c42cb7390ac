package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"listing_seeder/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Observe records request metrics and writes one structured log line per request.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route, dur := routeOf(r), time.Since(start)
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Debug()
			if status >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			ev.Str("route", route).
				Str("method", r.Method).
				Int("status", status).
				Dur("duration", dur).
				Str("remote", r.RemoteAddr).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http_request")
		})
	}
}
