package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FilipeCampos25/SiteClienteLucas/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// deviceIDKey is the context key for the device identity.
const deviceIDKey contextKey = "device_id"

const (
	deviceHeader     = "X-Device-ID"
	deviceCookieName = "device_id"

	// deviceCookieMaxAge keeps the cart addressable for a year of visits.
	deviceCookieMaxAge = 365 * 24 * 60 * 60
)

// DeviceID is middleware that resolves the device identity for cart routes:
// the X-Device-ID header wins, then the device_id cookie; a first-contact
// request gets a fresh UUID minted and set as a cookie. The ID always lands
// in the request context, so cart handlers never see an anonymous request.
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(deviceHeader)
		if id == "" {
			if c, err := r.Cookie(deviceCookieName); err == nil && c.Value != "" {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     deviceCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   deviceCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), deviceIDKey, id)
		ctx = logger.WithDeviceID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deviceIDFromContext extracts the device identity stored by DeviceID.
func deviceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey).(string)
	return id, ok && id != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
