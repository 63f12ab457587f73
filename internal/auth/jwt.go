// SPDX-License-Identifier: MIT

// Package auth implements token issuance and verification for contactd.
//
// Tokens are strict HS256 JWTs, verified signature-first with the algorithm
// pinned. Three scopes exist: access tokens authenticate API requests,
// refresh tokens mint new pairs, email tokens confirm mail addresses.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope restricts what a token may be used for.
type Scope string

const (
	ScopeAccess  Scope = "access"
	ScopeRefresh Scope = "refresh"
	ScopeEmail   Scope = "email"
)

// Error classifications for strict HTTP 401 mapping.
var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenMalformed = errors.New("token malformed")
	ErrInvalidAlg     = errors.New("invalid algorithm: must be HS256")
	ErrInvalidSig     = errors.New("invalid signature")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenNotActive = errors.New("token not yet active (nbf)")
	ErrMissingClaims  = errors.New("missing iat/nbf/exp claims")
	ErrMismatchIss    = errors.New("issuer mismatch")
	ErrMismatchScope  = errors.New("scope mismatch")
)

// Claims is the contactd JWT claim set. Sub carries the user email.
type Claims struct {
	Iss   string `json:"iss"`
	Sub   string `json:"sub"`
	Jti   string `json:"jti"`
	Scope Scope  `json:"scope"`
	Iat   int64  `json:"iat"`
	Nbf   int64  `json:"nbf"`
	Exp   int64  `json:"exp"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Manager issues and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	now        func() time.Time
}

// NewManager creates a token manager. TTLs must be positive.
func NewManager(secret []byte, issuer string, accessTTL, refreshTTL, emailTTL time.Duration) *Manager {
	return &Manager{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
		now:        time.Now,
	}
}

func (m *Manager) ttl(scope Scope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return m.refreshTTL
	case ScopeEmail:
		return m.emailTTL
	default:
		return m.accessTTL
	}
}

// Issue mints a token for the given subject (user email) and scope.
func (m *Manager) Issue(subject string, scope Scope) (string, error) {
	now := m.now().Unix()
	claims := Claims{
		Iss:   m.issuer,
		Sub:   subject,
		Jti:   uuid.New().String(),
		Scope: scope,
		Iat:   now,
		Nbf:   now,
		Exp:   now + int64(m.ttl(scope).Seconds()),
	}
	return sign(m.secret, claims)
}

// Verify checks the token against the manager's secret, issuer and the wanted
// scope and returns the claims on success.
func (m *Manager) Verify(token string, want Scope) (*Claims, error) {
	claims, err := verifyAt(token, m.secret, m.now().Unix())
	if err != nil {
		return nil, err
	}
	if claims.Iss != m.issuer {
		return nil, ErrMismatchIss
	}
	if claims.Scope != want {
		return nil, ErrMismatchScope
	}
	return claims, nil
}

func sign(secret []byte, claims Claims) (string, error) {
	hJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	cJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payload := base64.RawURLEncoding.EncodeToString(hJSON) + "." + base64.RawURLEncoding.EncodeToString(cJSON)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return payload + "." + sig, nil
}

// verifyAt validates structure, signature and time claims at the given
// timestamp. Signature is checked before any claim is inspected.
func verifyAt(token string, secret []byte, now int64) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrTokenMalformed
	}

	payload := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	expectedSig := mac.Sum(nil)

	actualSig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidSig
	}
	if !hmac.Equal(expectedSig, actualSig) {
		return nil, ErrInvalidSig
	}

	hJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	var hdr header
	if err := json.Unmarshal(hJSON, &hdr); err != nil {
		return nil, ErrTokenMalformed
	}
	// "alg=none" and friends are strictly rejected here.
	if hdr.Alg != "HS256" {
		return nil, ErrInvalidAlg
	}

	cJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	var claims Claims
	if err := json.Unmarshal(cJSON, &claims); err != nil {
		return nil, ErrTokenMalformed
	}

	if claims.Iat == 0 || claims.Nbf == 0 || claims.Exp == 0 {
		return nil, ErrMissingClaims
	}

	// Time boundaries with 30s skew tolerance
	const skew = 30
	if now < (claims.Nbf - skew) {
		return nil, ErrTokenNotActive
	}
	if now > (claims.Exp + skew) {
		return nil, ErrTokenExpired
	}
	if claims.Exp-claims.Iat <= 0 {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}
