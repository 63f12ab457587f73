// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactd/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) *store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &store.User{
		Username: "tester",
		Email:    email,
		Password: "hashed-password",
		Avatar:   "https://example.com/a.png",
	})
	require.NoError(t, err)
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, s, "alice@example.net")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.Confirmed)

	got, err := s.GetUserByEmail(ctx, "alice@example.net")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "tester", got.Username)
	assert.Equal(t, "hashed-password", got.Password)
	assert.Equal(t, "https://example.com/a.png", got.Avatar)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.net")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "alice@example.net")

	_, err := s.CreateUser(context.Background(), &store.User{
		Username: "other",
		Email:    "alice@example.net",
		Password: "x",
	})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestUpdateRefreshToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice@example.net")

	require.NoError(t, s.UpdateRefreshToken(ctx, u.ID, "refresh-jwt"))
	got, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "refresh-jwt", got.RefreshToken)

	// Clearing
	require.NoError(t, s.UpdateRefreshToken(ctx, u.ID, ""))
	got, err = s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)

	assert.ErrorIs(t, s.UpdateRefreshToken(ctx, 9999, "x"), store.ErrNotFound)
}

func TestConfirmEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice@example.net")

	require.NoError(t, s.ConfirmEmail(ctx, u.Email))
	got, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	assert.ErrorIs(t, s.ConfirmEmail(ctx, "nobody@example.net"), store.ErrNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice@example.net")

	got, err := s.UpdateAvatar(ctx, u.Email, "/avatars/u1-new.png")
	require.NoError(t, err)
	assert.Equal(t, "/avatars/u1-new.png", got.Avatar)

	_, err = s.UpdateAvatar(ctx, "nobody@example.net", "/avatars/x.png")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
