// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contactd/internal/log"
	"contactd/internal/metrics"
	"contactd/internal/store"
)

// birthdayWindowDays is the lookahead for the birthdays endpoint.
const birthdayWindowDays = 7

func contactIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	if limit > 500 {
		limit = 500
	}

	contacts, err := s.store.ListContacts(r.Context(), user.ID, skip, limit)
	if err != nil {
		s.contactStoreError(w, r, "contacts.list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (s *Server) handleFindContacts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	q := r.URL.Query()
	filter := store.ContactFilter{
		Firstname: q.Get("firstname"),
		Lastname:  q.Get("lastname"),
		Email:     q.Get("email"),
	}

	contacts, err := s.store.FindContacts(r.Context(), user.ID, filter)
	if err != nil {
		s.contactStoreError(w, r, "contacts.find_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (s *Server) handleBirthdays(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	contacts, err := s.store.UpcomingBirthdays(r.Context(), user.ID, time.Now(), birthdayWindowDays)
	if err != nil {
		s.contactStoreError(w, r, "contacts.birthdays_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := contactIDParam(r)
	if !ok {
		writeNotFound(w, "Contact not found")
		return
	}

	contact, err := s.store.GetContact(r.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Contact not found")
		return
	}
	if err != nil {
		s.contactStoreError(w, r, "contacts.get_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	user := currentUser(r.Context())

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	contact, err := s.store.CreateContact(r.Context(), req.toContact(user.ID))
	if err != nil {
		s.contactStoreError(w, r, "contacts.create_failed", err)
		return
	}

	metrics.ContactsCreatedTotal.Inc()
	logger.Info().
		Str("event", "contacts.created").
		Int64("user_id", user.ID).
		Int64("contact_id", contact.ID).
		Msg("contact created")
	writeJSON(w, http.StatusCreated, toContactResponse(contact))
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := contactIDParam(r)
	if !ok {
		writeNotFound(w, "Contact not found")
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	contact, err := s.store.UpdateContact(r.Context(), user.ID, id, req.toContact(user.ID))
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Contact not found")
		return
	}
	if err != nil {
		s.contactStoreError(w, r, "contacts.update_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := contactIDParam(r)
	if !ok {
		writeNotFound(w, "Contact not found")
		return
	}

	contact, err := s.store.DeleteContact(r.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w, "Contact not found")
		return
	}
	if err != nil {
		s.contactStoreError(w, r, "contacts.delete_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (s *Server) contactStoreError(w http.ResponseWriter, r *http.Request, event string, err error) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Error().
		Err(err).
		Str("event", event).
		Msg("contact store operation failed")
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}
