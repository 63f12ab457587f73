// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"contactd/internal/store"
)

const userColumns = "id, username, email, password, created_at, avatar, refresh_token, confirmed"

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	var createdAt string
	var confirmed int
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &createdAt, &u.Avatar, &u.RefreshToken, &confirmed); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTimestamp(createdAt)
	u.Confirmed = confirmed != 0
	return &u, nil
}

// GetUserByEmail looks up an account by exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new account. The email uniqueness constraint maps to
// store.ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user *store.User) (*store.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password, avatar) VALUES (?, ?, ?, ?)",
		user.Username, user.Email, user.Password, user.Avatar)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("sqlite: create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: create user id: %w", err)
	}
	return s.getUserByID(ctx, id)
}

func (s *Store) getUserByID(ctx context.Context, id int64) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user by id: %w", err)
	}
	return u, nil
}

// UpdateRefreshToken replaces the stored refresh token; empty clears it.
func (s *Store) UpdateRefreshToken(ctx context.Context, userID int64, token string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET refresh_token = ? WHERE id = ?", token, userID)
	if err != nil {
		return fmt.Errorf("sqlite: update refresh token: %w", err)
	}
	return requireRowAffected(res)
}

// ConfirmEmail marks the account as confirmed.
func (s *Store) ConfirmEmail(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET confirmed = 1 WHERE email = ?", email)
	if err != nil {
		return fmt.Errorf("sqlite: confirm email: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateAvatar sets the avatar URL and returns the updated account.
func (s *Store) UpdateAvatar(ctx context.Context, email, url string) (*store.User, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET avatar = ? WHERE email = ?", url, email)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update avatar: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return nil, err
	}
	return s.GetUserByEmail(ctx, email)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects the sqlite UNIQUE constraint error without
// depending on driver-internal error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
