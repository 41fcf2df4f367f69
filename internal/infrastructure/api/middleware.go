package api

import (
	"net/http"
	"time"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	sessionCookie        = "session"
	stateCookie          = "state"
	integrationKeyHeader = "X-Integration-Key"
)

// SecurityHeadersMiddleware sets response headers common to every route
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLoggerMiddleware writes one zerolog line per request
func RequestLoggerMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}

// SessionMiddleware resolves the shop from the session cookie or the
// X-Integration-Key header and stores it on the request context
func SessionMiddleware(integrations *application.IntegrationService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(integrationKeyHeader)
			if key == "" {
				if c, err := r.Cookie(sessionCookie); err == nil {
					key = c.Value
				}
			}

			integration, err := integrations.GetIntegrationByKey(r.Context(), key)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			logger.Debug().
				Str("shopDomain", integration.ShopDomain).
				Msg("Authenticated session")

			ctx := domain.WithShopDomain(r.Context(), integration.ShopDomain)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
