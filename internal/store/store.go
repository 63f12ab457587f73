// SPDX-License-Identifier: MIT

// Package store defines the contactd domain model and repository contracts.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors mapped to HTTP status codes by the API layer.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a registered account. Password holds the bcrypt hash, never the
// plaintext. RefreshToken is the latest issued refresh JWT, or empty.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Avatar       string    `json:"avatar"`
	RefreshToken string    `json:"-"`
	Confirmed    bool      `json:"confirmed"`
}

// Contact is a single address-book entry, always owned by one user.
type Contact struct {
	ID          int64     `json:"id"`
	Firstname   string    `json:"firstname"`
	Lastname    string    `json:"lastname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Relation    string    `json:"relation"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      int64     `json:"-"`
}

// ContactFilter holds optional case-insensitive substring filters for search.
type ContactFilter struct {
	Firstname string
	Lastname  string
	Email     string
}

// Users is the account repository.
type Users interface {
	// GetUserByEmail returns ErrNotFound when no account exists.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser inserts the user and returns it with ID and CreatedAt set.
	// Returns ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, user *User) (*User, error)
	// UpdateRefreshToken replaces the stored refresh token; empty clears it.
	UpdateRefreshToken(ctx context.Context, userID int64, token string) error
	// ConfirmEmail marks the account as confirmed.
	ConfirmEmail(ctx context.Context, email string) error
	// UpdateAvatar sets the avatar URL and returns the updated user.
	UpdateAvatar(ctx context.Context, email, url string) (*User, error)
}

// Contacts is the address-book repository. Every operation is scoped to the
// owning user; foreign rows behave as absent (ErrNotFound).
type Contacts interface {
	ListContacts(ctx context.Context, userID int64, skip, limit int) ([]Contact, error)
	GetContact(ctx context.Context, userID, contactID int64) (*Contact, error)
	CreateContact(ctx context.Context, contact *Contact) (*Contact, error)
	UpdateContact(ctx context.Context, userID, contactID int64, contact *Contact) (*Contact, error)
	DeleteContact(ctx context.Context, userID, contactID int64) (*Contact, error)
	FindContacts(ctx context.Context, userID int64, filter ContactFilter) ([]Contact, error)
	// UpcomingBirthdays returns contacts whose birthday, normalized to the
	// current year, falls within [today, today+days] inclusive.
	UpcomingBirthdays(ctx context.Context, userID int64, today time.Time, days int) ([]Contact, error)
}

// Store bundles the repositories with lifecycle operations.
type Store interface {
	Users
	Contacts
	Ping(ctx context.Context) error
	Close() error
}

// BirthdayWithin reports whether dob, moved into today's year, lands within
// [today, today+days]. Both dates are compared at day precision.
func BirthdayWithin(dob, today time.Time, days int) bool {
	today = truncateDay(today)
	end := today.AddDate(0, 0, days)
	this := time.Date(today.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, today.Location())
	return !this.Before(today) && !this.After(end)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
