// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"strings"

	"contactd/internal/auth"
	"contactd/internal/log"
	"contactd/internal/metrics"
	"contactd/internal/store"
)

type ctxKey string

const userCtxKey ctxKey = "current_user"

// currentUser returns the authenticated user stored by requireUser.
func currentUser(ctx context.Context) *store.User {
	u, _ := ctx.Value(userCtxKey).(*store.User)
	return u
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireUser verifies the access token and resolves the current user,
// consulting the user cache before the store.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithComponentFromContext(r.Context(), "auth")

		token := bearerToken(r)
		if token == "" {
			writeUnauthorized(w, "Not authenticated")
			return
		}

		claims, err := s.tokens.Verify(token, auth.ScopeAccess)
		if err != nil {
			logger.Debug().Err(err).Str("event", "auth.token_rejected").Msg("access token rejected")
			writeUnauthorized(w, "")
			return
		}

		user, ok := s.users.Get(r.Context(), claims.Sub)
		if ok {
			metrics.RecordUserCache("hit")
		} else {
			metrics.RecordUserCache("miss")
			user, err = s.store.GetUserByEmail(r.Context(), claims.Sub)
			if err != nil {
				logger.Warn().Err(err).Str("event", "auth.user_lookup_failed").Msg("token subject has no account")
				writeUnauthorized(w, "")
				return
			}
			s.users.Set(r.Context(), user, s.userCacheTTL)
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
