// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of contactd.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactd/internal/api/middleware"
	"contactd/internal/auth"
	"contactd/internal/avatar"
	"contactd/internal/cache"
	"contactd/internal/config"
	"contactd/internal/health"
	"contactd/internal/mail"
	"contactd/internal/store"
)

// Server wires the contactd HTTP handlers to their dependencies.
type Server struct {
	cfg     config.Config
	store   store.Store
	users   cache.UserCache
	tokens  *auth.Manager
	mailer  mail.Sender
	avatars *avatar.Store
	healthM *health.Manager

	// userCacheTTL bounds how stale an authenticated user may be served.
	userCacheTTL time.Duration
}

// Deps bundles the dependencies for New.
type Deps struct {
	Config  config.Config
	Store   store.Store
	Users   cache.UserCache
	Tokens  *auth.Manager
	Mailer  mail.Sender
	Avatars *avatar.Store
	Health  *health.Manager
}

// New constructs the API server.
func New(d Deps) *Server {
	return &Server{
		cfg:          d.Config,
		store:        d.Store,
		users:        d.Users,
		tokens:       d.Tokens,
		mailer:       d.Mailer,
		avatars:      d.Avatars,
		healthM:      d.Health,
		userCacheTTL: d.Config.AccessTTL,
	}
}

// Handler builds the full route tree with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:      true,
		AllowedOrigins:  s.cfg.AllowedOrigins,
		EnableMetrics:   true,
		EnableLogging:   true,
		EnableRateLimit: s.cfg.RateLimit.Enabled,
		RateLimitLimit:  s.cfg.RateLimit.GlobalLimit,
		RateLimitWindow: s.cfg.RateLimit.GlobalWindow,
	})

	s.registerPublicRoutes(r)
	s.registerAuthRoutes(r)
	s.registerUserRoutes(r)
	s.registerContactRoutes(r)

	return r
}

func (s *Server) registerPublicRoutes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.healthM.ServeHealth)
	r.Get("/readyz", s.healthM.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/avatars/*", http.StripPrefix("/avatars", s.avatars.Handler()))
}

func (s *Server) registerAuthRoutes(r chi.Router) {
	mutateLimit := middleware.MutationRateLimit(s.cfg.RateLimit.MutateLimit, s.cfg.RateLimit.MutateWindow)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(mutateLimit).Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Get("/refresh_token", s.handleRefreshToken)
		r.Get("/confirmed_email/{token}", s.handleConfirmEmail)
		r.Post("/request_email", s.handleRequestEmail)
	})
}

func (s *Server) registerUserRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/me", s.handleMe)
		r.Patch("/avatar", s.handleUpdateAvatar)
	})
}

func (s *Server) registerContactRoutes(r chi.Router) {
	mutateLimit := middleware.MutationRateLimit(s.cfg.RateLimit.MutateLimit, s.cfg.RateLimit.MutateWindow)

	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleListContacts)
		r.Get("/find", s.handleFindContacts)
		r.Get("/birthdays", s.handleBirthdays)
		r.With(mutateLimit).Post("/", s.handleCreateContact)
		r.Get("/{contactID}", s.handleGetContact)
		r.Put("/{contactID}", s.handleUpdateContact)
		r.Delete("/{contactID}", s.handleDeleteContact)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the contactd REST API"})
}
