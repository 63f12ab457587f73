// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the error envelope used across the API.
func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Could not validate credentials"
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeNotFound(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Not found"
	}
	writeDetail(w, http.StatusNotFound, detail)
}

// fieldError describes one invalid request field.
type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// writeValidationErrors reports invalid input with per-field messages.
func writeValidationErrors(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
}

// decodeJSON decodes a request body into dst, rejecting unknown fields and
// oversized bodies.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	// Trailing garbage after the JSON value is also a client error.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}
