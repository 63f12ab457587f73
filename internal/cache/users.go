// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"contactd/internal/store"
)

// UserCache caches authenticated users between requests, keyed by email.
// It sits in front of the store so access-token verification does not hit
// SQLite on every call.
type UserCache interface {
	Get(ctx context.Context, email string) (*store.User, bool)
	Set(ctx context.Context, user *store.User, ttl time.Duration)
	Invalidate(ctx context.Context, email string)
}

const userKeyPrefix = "user:"

// memoryUserCache keeps users in-process via the generic Cache.
type memoryUserCache struct {
	cache Cache
}

// NewMemoryUserCache wraps an in-memory Cache as a UserCache.
func NewMemoryUserCache(c Cache) UserCache {
	return &memoryUserCache{cache: c}
}

func (m *memoryUserCache) Get(_ context.Context, email string) (*store.User, bool) {
	v, ok := m.cache.Get(userKeyPrefix + email)
	if !ok {
		return nil, false
	}
	u, ok := v.(*store.User)
	if !ok {
		return nil, false
	}
	clone := *u
	return &clone, true
}

func (m *memoryUserCache) Set(_ context.Context, user *store.User, ttl time.Duration) {
	clone := *user
	m.cache.Set(userKeyPrefix+clone.Email, &clone, ttl)
}

func (m *memoryUserCache) Invalidate(_ context.Context, email string) {
	m.cache.Delete(userKeyPrefix + email)
}

// redisUserCache stores users as JSON in Redis.
type redisUserCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisUserCache creates a Redis-backed user cache and verifies
// connectivity before returning.
func NewRedisUserCache(client *redis.Client, logger zerolog.Logger) (UserCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to Redis user cache")
	return &redisUserCache{client: client, logger: logger}, nil
}

// redisUser is the serialized form; store.User hides Password and
// RefreshToken from JSON, and those must survive the round trip.
type redisUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	CreatedAt    time.Time `json:"created_at"`
	Avatar       string    `json:"avatar"`
	RefreshToken string    `json:"refresh_token"`
	Confirmed    bool      `json:"confirmed"`
}

func (r *redisUserCache) Get(ctx context.Context, email string) (*store.User, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := r.client.Get(ctx, userKeyPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("email", email).Msg("redis get failed")
		return nil, false
	}
	var ru redisUser
	if err := json.Unmarshal(raw, &ru); err != nil {
		r.logger.Warn().Err(err).Msg("user cache unmarshal failed")
		return nil, false
	}
	return &store.User{
		ID:           ru.ID,
		Username:     ru.Username,
		Email:        ru.Email,
		Password:     ru.Password,
		CreatedAt:    ru.CreatedAt,
		Avatar:       ru.Avatar,
		RefreshToken: ru.RefreshToken,
		Confirmed:    ru.Confirmed,
	}, true
}

func (r *redisUserCache) Set(ctx context.Context, user *store.User, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(redisUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Password:     user.Password,
		CreatedAt:    user.CreatedAt,
		Avatar:       user.Avatar,
		RefreshToken: user.RefreshToken,
		Confirmed:    user.Confirmed,
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("user cache marshal failed")
		return
	}
	if err := r.client.Set(ctx, userKeyPrefix+user.Email, data, ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("email", user.Email).Msg("redis set failed")
	}
}

func (r *redisUserCache) Invalidate(ctx context.Context, email string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := r.client.Del(ctx, userKeyPrefix+email).Err(); err != nil {
		r.logger.Warn().Err(err).Str("email", email).Msg("redis delete failed")
	}
}
