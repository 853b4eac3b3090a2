package middleware

import (
	"log/slog"
	"net/http"

	"github.com/FilipeCampos25/SiteClienteLucas/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, device_id, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// This middleware should be mounted AFTER RequestLogging (which sets
// correlation_id) and Tracing (which sets the OpenTelemetry span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Pick up the device identity from the X-Device-ID header or the
			// device cookie when the client already carries one. Routes that
			// mint fresh device IDs enrich their own context downstream.
			deviceID := r.Header.Get("X-Device-ID")
			if deviceID == "" {
				if c, err := r.Cookie("device_id"); err == nil {
					deviceID = c.Value
				}
			}
			if deviceID != "" {
				ctx = logger.WithDeviceID(ctx, deviceID)
			}

			// Build enriched logger with all available context fields
			// (correlation_id, device_id, trace_id, span_id).
			enriched := logger.WithContext(ctx, base)

			// Store the enriched logger in context for downstream handlers.
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
