package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
)

// Logging returns a middleware that logs every HTTP request.
// It logs the method, path, status, user ID, and duration, and records the
// request in the metrics collector when one is provided.
func Logging(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			userID := GetUserID(r.Context())

			if collector != nil {
				collector.RecordRequest(routePattern(r), r.Method, status, duration)
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"user_id", userID,
				"duration_ms", duration.Milliseconds(),
			}
			switch {
			case status >= 500:
				slog.Error("HTTP error", args...)
			case status >= 400:
				slog.Warn("HTTP error", args...)
			default:
				slog.Info("HTTP ok", args...)
			}
		})
	}
}

// routePattern returns the matched chi route pattern, falling back to the
// raw path for unmatched requests. Patterns keep metric cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
