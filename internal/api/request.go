// SPDX-License-Identifier: MIT

package api

import (
	"regexp"
	"strings"
	"time"

	"contactd/internal/store"
)

// maxFieldLen matches the column widths of the original schema.
const maxFieldLen = 50

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *signupRequest) validate() []fieldError {
	var errs []fieldError
	if r.Username == "" {
		errs = append(errs, fieldError{"username", "must not be empty"})
	} else if len(r.Username) > maxFieldLen {
		errs = append(errs, fieldError{"username", "must be at most 50 characters"})
	}
	errs = append(errs, validateEmail("email", r.Email)...)
	if len(r.Password) < 6 {
		errs = append(errs, fieldError{"password", "must be at least 6 characters"})
	} else if len(r.Password) > 72 {
		// bcrypt ignores input beyond 72 bytes
		errs = append(errs, fieldError{"password", "must be at most 72 characters"})
	}
	return errs
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) validate() []fieldError {
	var errs []fieldError
	errs = append(errs, validateEmail("email", r.Email)...)
	if r.Password == "" {
		errs = append(errs, fieldError{"password", "must not be empty"})
	}
	return errs
}

type requestEmailRequest struct {
	Email string `json:"email"`
}

// contactRequest is the body of contact create and update calls.
type contactRequest struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Relation    string `json:"relation"`
}

func (r *contactRequest) validate() []fieldError {
	var errs []fieldError
	errs = append(errs, validateRequired("firstname", r.Firstname)...)
	errs = append(errs, validateRequired("lastname", r.Lastname)...)
	errs = append(errs, validateEmail("email", r.Email)...)
	errs = append(errs, validateRequired("phone_number", r.PhoneNumber)...)
	errs = append(errs, validateRequired("relation", r.Relation)...)
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		errs = append(errs, fieldError{"date_of_birth", "must be a date in YYYY-MM-DD format"})
	}
	return errs
}

// toContact converts a validated request into the domain type.
func (r *contactRequest) toContact(userID int64) *store.Contact {
	dob, _ := time.Parse("2006-01-02", r.DateOfBirth)
	return &store.Contact{
		Firstname:   r.Firstname,
		Lastname:    r.Lastname,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		DateOfBirth: dob,
		Relation:    r.Relation,
		UserID:      userID,
	}
}

func validateRequired(field, value string) []fieldError {
	if strings.TrimSpace(value) == "" {
		return []fieldError{{field, "must not be empty"}}
	}
	if len(value) > maxFieldLen {
		return []fieldError{{field, "must be at most 50 characters"}}
	}
	return nil
}

func validateEmail(field, value string) []fieldError {
	if value == "" {
		return []fieldError{{field, "must not be empty"}}
	}
	if len(value) > 250 || !emailPattern.MatchString(value) {
		return []fieldError{{field, "must be a valid email address"}}
	}
	return nil
}
