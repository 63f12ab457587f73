// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStackRouter(cfg StackConfig, h http.HandlerFunc) http.Handler {
	r := NewRouter(cfg)
	r.Get("/test", h)
	return r
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDGenerated(t *testing.T) {
	h := newStackRouter(StackConfig{}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRequestIDEchoed(t *testing.T) {
	h := newStackRouter(StackConfig{}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "client-chosen-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-chosen-id", rec.Header().Get(HeaderRequestID))
}

func TestSecurityHeadersPresent(t *testing.T) {
	h := newStackRouter(StackConfig{}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestCORSAllowAll(t *testing.T) {
	h := newStackRouter(StackConfig{EnableCORS: true, AllowedOrigins: []string{"*"}}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://app.example.net")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.net", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Vary"), "Origin")
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := newStackRouter(StackConfig{EnableCORS: true, AllowedOrigins: []string{"https://trusted.example.net"}}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(StackConfig{EnableCORS: true, AllowedOrigins: []string{"*"}})
	h.Post("/test", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://app.example.net")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRecovererReturnsJSON500(t *testing.T) {
	h := newStackRouter(StackConfig{}, func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Detail    string `json:"detail"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Detail)
	assert.Equal(t, "req-1", body.RequestID)
}

func TestGlobalRateLimit(t *testing.T) {
	h := newStackRouter(StackConfig{
		EnableRateLimit: true,
		RateLimitLimit:  3,
		RateLimitWindow: time.Minute,
	}, okHandler)

	var last *httptest.ResponseRecorder
	for range 4 {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Too many requests. Please try again later."}`, last.Body.String())
}
