// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/recipefinder/recipefinder/internal/auth"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// ChiMiddleware builds the router's middleware stack from configuration:
// CORS, per-group rate limits, and the admin JWT gate.
type ChiMiddleware struct {
	cors      func(http.Handler) http.Handler
	rateLimit config.RateLimitConfig
	auth      *auth.Service
	security  *logging.SecurityLogger
}

// NewChiMiddleware wires the middleware stack. authService may be the
// disabled service; admin routes are then open, matching the original
// deployment which had no authentication at all.
func NewChiMiddleware(server *config.ServerConfig, rateLimit config.RateLimitConfig, authService *auth.Service) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		cors:      corsHandler,
		rateLimit: rateLimit,
		auth:      authService,
		security:  logging.NewSecurityLogger(),
	}
}

// CORS returns the go-chi/cors middleware. Global so OPTIONS preflight
// requests are handled on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// rateLimitExceeded answers 429 in the response envelope instead of
// httprate's bare-text default.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusTooManyRequests, CodeRateLimit, "Too many requests, slow down", nil)
}

// limitByIP builds a per-IP limiter with the envelope 429 handler.
// Zero or negative requests, or the disabled flag, turn it into a no-op.
func (m *ChiMiddleware) limitByIP(requests int) func(http.Handler) http.Handler {
	if m.rateLimit.Disabled || requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// RateLimitSearch limits the search endpoint. Each request costs an
// embedding round-trip and usually an LLM call, so the default is strict.
func (m *ChiMiddleware) RateLimitSearch() func(http.Handler) http.Handler {
	return m.limitByIP(m.rateLimit.Search)
}

// RateLimitAPI is the default limit for recipe and analytics endpoints.
func (m *ChiMiddleware) RateLimitAPI() func(http.Handler) http.Handler {
	return m.limitByIP(m.rateLimit.API)
}

// RateLimitAuth is the strictest limit, applied to login to slow
// brute-force attempts.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limitByIP(m.rateLimit.Auth)
}

// RateLimitAdmin limits admin operations (rebuild, snapshot, import),
// which are resource intensive.
func (m *ChiMiddleware) RateLimitAdmin() func(http.Handler) http.Handler {
	return m.limitByIP(m.rateLimit.Admin)
}

// RateLimitHealth is permissive so monitoring can poll frequently while
// still bounding abuse.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limitByIP(m.rateLimit.Health)
}

// RequestIDWithLogging adds the X-Request-ID header and seeds the
// logging context with request and correlation IDs, so every log line
// produced while handling the request can be traced back to it.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithNewCorrelationID(ctx)

			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APISecurityHeaders adds baseline security headers to API responses.
// Content-Security-Policy is omitted; it is designed for HTML. HSTS is
// added only when the request arrived over TLS or a TLS-terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrometheusMetrics records request count, duration and in-flight gauge
// per route pattern. The chi pattern ("/api/v1/recipes/{id}") keeps the
// endpoint label cardinality bounded.
func PrometheusMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.statusCode), time.Since(start))
		})
	}
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and calls the underlying WriteHeader.
func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// claimsKey is the request context key for verified admin claims.
type claimsKey struct{}

// ClaimsFromContext returns the verified claims, or nil when the request
// passed the admin gate without a token (auth disabled).
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// actorFromContext names the admin for audit rows.
func actorFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Username
	}
	return "anonymous"
}

// RequireAdmin gates mutating and administrative routes behind a Bearer
// token. With authentication disabled (no admin hash configured) the
// gate is open; the constructor already warned about it at startup.
func (m *ChiMiddleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.auth.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				m.security.LogTokenRejected(r.RemoteAddr, r.URL.Path, "missing bearer token")
				respondError(w, http.StatusUnauthorized, CodeAuthentication, "Missing or malformed Authorization header", nil)
				return
			}

			claims, err := m.auth.Validate(token)
			if err != nil {
				m.security.LogTokenRejected(r.RemoteAddr, r.URL.Path, err.Error())
				respondError(w, http.StatusUnauthorized, CodeAuthentication, "Invalid or expired token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
