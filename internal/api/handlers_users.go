// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"contactd/internal/avatar"
	"contactd/internal/log"
)

// maxAvatarBytes caps avatar uploads (8 MiB).
const maxAvatarBytes = 8 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	user := currentUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	publicPath, err := s.avatars.Save(user.ID, header.Filename, file)
	if errors.Is(err, avatar.ErrUnsupportedType) {
		writeDetail(w, http.StatusUnsupportedMediaType, "Unsupported image type")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("event", "avatar.save_failed").Msg("avatar upload failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	updated, err := s.store.UpdateAvatar(r.Context(), user.Email, publicPath)
	if err != nil {
		logger.Error().Err(err).Str("event", "avatar.update_failed").Msg("avatar persist failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.users.Invalidate(r.Context(), user.Email)

	logger.Info().
		Str("event", "avatar.updated").
		Int64("user_id", user.ID).
		Msg("avatar updated")
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}
