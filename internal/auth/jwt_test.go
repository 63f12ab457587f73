// SPDX-License-Identifier: MIT

package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager([]byte("0123456789abcdef0123456789abcdef"), "contactd",
		15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	m := testManager()

	for _, scope := range []Scope{ScopeAccess, ScopeRefresh, ScopeEmail} {
		token, err := m.Issue("alice@example.com", scope)
		require.NoError(t, err)

		claims, err := m.Verify(token, scope)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Sub)
		assert.Equal(t, scope, claims.Scope)
		assert.Equal(t, "contactd", claims.Iss)
		assert.NotEmpty(t, claims.Jti)
	}
}

func TestVerifyScopeMismatch(t *testing.T) {
	m := testManager()

	token, err := m.Issue("alice@example.com", ScopeRefresh)
	require.NoError(t, err)

	_, err = m.Verify(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrMismatchScope)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	other := NewManager([]byte("0123456789abcdef0123456789abcdef"), "someone-else",
		time.Minute, time.Hour, time.Hour)
	token, err := other.Issue("alice@example.com", ScopeAccess)
	require.NoError(t, err)

	_, err = testManager().Verify(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrMismatchIss)
}

func TestVerifyExpired(t *testing.T) {
	m := testManager()
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.Issue("alice@example.com", ScopeAccess)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyNotYetActive(t *testing.T) {
	m := testManager()
	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, err := m.Issue("alice@example.com", ScopeAccess)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrTokenNotActive)
}

func TestVerifyRejectsTampering(t *testing.T) {
	m := testManager()
	token, err := m.Issue("alice@example.com", ScopeAccess)
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr error
	}{
		{
			name:    "wrong secret",
			mutate:  func(s string) string { return s },
			wantErr: ErrInvalidSig,
		},
		{
			name: "flipped signature bit",
			mutate: func(s string) string {
				if strings.HasSuffix(s, "A") {
					return s[:len(s)-1] + "B"
				}
				return s[:len(s)-1] + "A"
			},
			wantErr: ErrInvalidSig,
		},
		{
			name:    "missing segment",
			mutate:  func(s string) string { return s[strings.Index(s, ".")+1:] },
			wantErr: ErrTokenMalformed,
		},
		{
			name:    "empty token",
			mutate:  func(string) string { return "" },
			wantErr: ErrTokenMissing,
		},
	}

	wrongSecret := NewManager([]byte("ffffffffffffffffffffffffffffffff"), "contactd",
		time.Minute, time.Hour, time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := m
			if tt.name == "wrong secret" {
				verifier = wrongSecret
			}
			_, err := verifier.Verify(tt.mutate(token), ScopeAccess)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	m := testManager()
	token, err := m.Issue("alice@example.com", ScopeAccess)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Re-sign the payload with the correct secret but an alg=none header:
	// the header swap alone must already invalidate the signature.
	parts[0] = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	_, err = m.Verify(strings.Join(parts, "."), ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidSig)
}
