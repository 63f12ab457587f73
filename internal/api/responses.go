// SPDX-License-Identifier: MIT

package api

import (
	"time"

	"contactd/internal/store"
)

// userResponse is the public view of an account.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	Confirmed bool      `json:"confirmed"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		Confirmed: u.Confirmed,
	}
}

// contactResponse renders dates in the YYYY-MM-DD form clients submit.
type contactResponse struct {
	ID          int64     `json:"id"`
	Firstname   string    `json:"firstname"`
	Lastname    string    `json:"lastname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	DateOfBirth string    `json:"date_of_birth"`
	Relation    string    `json:"relation"`
	CreatedAt   time.Time `json:"created_at"`
}

func toContactResponse(c *store.Contact) contactResponse {
	return contactResponse{
		ID:          c.ID,
		Firstname:   c.Firstname,
		Lastname:    c.Lastname,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		DateOfBirth: c.DateOfBirth.Format("2006-01-02"),
		Relation:    c.Relation,
		CreatedAt:   c.CreatedAt,
	}
}

func toContactResponses(contacts []store.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, toContactResponse(&contacts[i]))
	}
	return out
}

// tokenResponse is the login/refresh payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
