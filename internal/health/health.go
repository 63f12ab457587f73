// SPDX-License-Identifier: MIT

// Package health provides liveness and readiness checks with per-component
// status, suitable for Docker HEALTHCHECK and Kubernetes probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"contactd/internal/log"
)

// Status represents the overall health/readiness status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Checker is a pluggable component health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Response is the payload for both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Ready     bool                   `json:"ready"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Manager runs registered checkers and serves probe endpoints.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a health check manager.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// Register adds a checker. Not safe for use after the server starts.
func (m *Manager) Register(c Checker) {
	m.checkers = append(m.checkers, c)
}

func (m *Manager) run(ctx context.Context) (Status, map[string]CheckResult) {
	if len(m.checkers) == 0 {
		return StatusHealthy, nil
	}
	checks := make(map[string]CheckResult, len(m.checkers))
	overall := StatusHealthy
	for _, c := range m.checkers {
		res := c.Check(ctx)
		checks[c.Name()] = res
		switch res.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	return overall, checks
}

// ServeHealth is the liveness probe: 200 as long as the process runs.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:    StatusHealthy,
		Ready:     true,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	writeProbe(w, http.StatusOK, resp)
}

// ServeReady is the readiness probe: 503 unless every dependency answers.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, checks := m.run(ctx)
	resp := Response{
		Status:    status,
		Ready:     status != StatusUnhealthy,
		Version:   m.version,
		Timestamp: time.Now(),
		Checks:    checks,
	}
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
		logger := log.WithComponentFromContext(r.Context(), "health")
		logger.Warn().
			Str("event", "health.not_ready").
			Interface("checks", checks).
			Msg("readiness check failed")
	}
	writeProbe(w, code, resp)
}

func writeProbe(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckerFunc) Name() string { return c.CheckName }

func (c CheckerFunc) Check(ctx context.Context) CheckResult {
	if err := c.Fn(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
