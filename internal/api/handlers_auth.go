// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contactd/internal/auth"
	"contactd/internal/avatar"
	"contactd/internal/log"
	"contactd/internal/mail"
	"contactd/internal/metrics"
	"contactd/internal/store"
)

const confirmationDetail = "User successfully created. Check your email for confirmation."

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Str("event", "signup.hash_failed").Msg("password hashing failed")
		metrics.RecordSignup("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), &store.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Avatar:   avatar.GravatarURL(req.Email),
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		metrics.RecordSignup("duplicate")
		writeDetail(w, http.StatusConflict, "Account already exists")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("event", "signup.store_failed").Msg("user creation failed")
		metrics.RecordSignup("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.queueConfirmationEmail(user)
	metrics.RecordSignup("created")
	logger.Info().
		Str("event", "signup.created").
		Int64("user_id", user.ID).
		Msg("account created")

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   toUserResponse(user),
		"detail": confirmationDetail,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordLogin("bad_credentials")
		writeUnauthorized(w, "Invalid email")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("event", "login.store_failed").Msg("user lookup failed")
		metrics.RecordLogin("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !user.Confirmed {
		metrics.RecordLogin("unconfirmed")
		writeUnauthorized(w, "Email not confirmed")
		return
	}
	if !auth.VerifyPassword(user.Password, req.Password) {
		metrics.RecordLogin("bad_credentials")
		writeUnauthorized(w, "Invalid password")
		return
	}

	tokens, err := s.issueTokenPair(r, user)
	if err != nil {
		logger.Error().Err(err).Str("event", "login.token_failed").Msg("token issuance failed")
		metrics.RecordLogin("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	metrics.RecordLogin("ok")
	logger.Info().
		Str("event", "login.ok").
		Int64("user_id", user.ID).
		Msg("user logged in")
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	token := bearerToken(r)
	if token == "" {
		writeUnauthorized(w, "Not authenticated")
		return
	}
	claims, err := s.tokens.Verify(token, auth.ScopeRefresh)
	if err != nil {
		logger.Debug().Err(err).Str("event", "refresh.token_rejected").Msg("refresh token rejected")
		writeUnauthorized(w, "Could not validate credentials")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), claims.Sub)
	if err != nil {
		writeUnauthorized(w, "Could not validate credentials")
		return
	}
	if user.RefreshToken != token {
		// A mismatch means the token was superseded or stolen; drop the
		// stored one so the whole session chain dies.
		if err := s.store.UpdateRefreshToken(r.Context(), user.ID, ""); err != nil {
			logger.Error().Err(err).Str("event", "refresh.clear_failed").Msg("failed to clear refresh token")
		}
		s.users.Invalidate(r.Context(), user.Email)
		writeUnauthorized(w, "Invalid refresh token")
		return
	}

	tokens, err := s.issueTokenPair(r, user)
	if err != nil {
		logger.Error().Err(err).Str("event", "refresh.token_failed").Msg("token issuance failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// issueTokenPair mints an access/refresh pair and persists the refresh token
// on the user row.
func (s *Server) issueTokenPair(r *http.Request, user *store.User) (*tokenResponse, error) {
	access, err := s.tokens.Issue(user.Email, auth.ScopeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(user.Email, auth.ScopeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRefreshToken(r.Context(), user.ID, refresh); err != nil {
		return nil, err
	}
	s.users.Invalidate(r.Context(), user.Email)
	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	token := chi.URLParam(r, "token")
	claims, err := s.tokens.Verify(token, auth.ScopeEmail)
	if err != nil {
		logger.Debug().Err(err).Str("event", "confirm.token_rejected").Msg("email token rejected")
		writeDetail(w, http.StatusBadRequest, "Invalid token for email verification")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), claims.Sub)
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusBadRequest, "Verification error")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("event", "confirm.store_failed").Msg("user lookup failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user.Confirmed {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}
	if err := s.store.ConfirmEmail(r.Context(), user.Email); err != nil {
		logger.Error().Err(err).Str("event", "confirm.update_failed").Msg("confirm update failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.users.Invalidate(r.Context(), user.Email)
	logger.Info().
		Str("event", "confirm.ok").
		Int64("user_id", user.ID).
		Msg("email confirmed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}

func (s *Server) handleRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req requestEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	// The response never reveals whether the account exists.
	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err == nil {
		if user.Confirmed {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
			return
		}
		s.queueConfirmationEmail(user)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Check your email for confirmation."})
}

func (s *Server) queueConfirmationEmail(user *store.User) {
	logger := log.WithComponent("api")
	token, err := s.tokens.Issue(user.Email, auth.ScopeEmail)
	if err != nil {
		logger.Error().Err(err).Str("event", "confirm.issue_failed").Msg("email token issuance failed")
		return
	}
	s.mailer.Enqueue(mail.Confirmation(s.cfg.PublicURL, user.Username, user.Email, token))
}
