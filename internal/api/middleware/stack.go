// SPDX-License-Identifier: MIT

// Package middleware provides the canonical HTTP ingress middleware stack
// for the contactd API.
package middleware

import (
	"time"

	"github.com/go-chi/chi/v5"

	"contactd/internal/log"
)

// StackConfig configures the canonical ingress middleware stack.
type StackConfig struct {
	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// Observability
	EnableMetrics bool
	EnableLogging bool

	// Rate limiting (global, per client IP)
	EnableRateLimit bool
	RateLimitLimit  int
	RateLimitWindow time.Duration
}

// NewRouter constructs a chi router with the canonical middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the canonical middleware stack to r.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// 1. Recoverer (outermost safety net)
	r.Use(Recoverer)
	// 2. RequestID (correlation early)
	r.Use(RequestID)
	// 3. CORS (so OPTIONS and browser clients behave)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	// 4. Security headers
	r.Use(SecurityHeaders)
	// 5. Metrics (track all requests)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	// 6. Logging (wraps handlers, captures full latency)
	if cfg.EnableLogging {
		r.Use(log.Middleware())
	}
	// 7. Rate limit (global protection)
	if cfg.EnableRateLimit && cfg.RateLimitLimit > 0 {
		r.Use(RateLimit(RateLimitConfig{
			RequestLimit: cfg.RateLimitLimit,
			WindowSize:   cfg.RateLimitWindow,
		}))
	}
}
