// SPDX-License-Identifier: MIT

// Package config loads contactd configuration with the precedence
// ENV > file > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RedisConfig holds Redis connection settings. An empty Addr disables Redis
// and the service falls back to the in-memory cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SMTPConfig holds outbound mail settings. An empty Host disables delivery;
// queued messages are then logged and dropped.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// RateLimitConfig holds per-client-IP request limits.
type RateLimitConfig struct {
	Enabled      bool          `yaml:"enabled"`
	GlobalLimit  int           `yaml:"global_limit"` // requests per GlobalWindow, per client IP
	GlobalWindow time.Duration `yaml:"global_window"`
	MutateLimit  int           `yaml:"mutate_limit"` // signup and contact-create limit per MutateWindow
	MutateWindow time.Duration `yaml:"mutate_window"`
}

// Config is the full contactd runtime configuration.
type Config struct {
	ListenAddr string `yaml:"listen"`
	DataDir    string `yaml:"data_dir"`
	DBPath     string `yaml:"db_path"` // defaults to <data_dir>/contactd.db

	// PublicURL is the externally reachable base URL, used to build the
	// email confirmation link.
	PublicURL string `yaml:"public_url"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	JWTSecret  string        `yaml:"jwt_secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	EmailTTL   time.Duration `yaml:"email_ttl"`

	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	LogLevel   string `yaml:"log_level"`
	LogService string `yaml:"log_service"`
}

// Default returns the built-in defaults, before file and env overlays.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		DataDir:        "/var/lib/contactd",
		PublicURL:      "http://localhost:8080",
		AllowedOrigins: []string{"*"},
		AccessTTL:      15 * time.Minute,
		RefreshTTL:     7 * 24 * time.Hour,
		EmailTTL:       24 * time.Hour,
		Redis:          RedisConfig{},
		SMTP:           SMTPConfig{Port: 587},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			GlobalLimit:  600,
			GlobalWindow: time.Minute,
			MutateLimit:  2,
			MutateWindow: 5 * time.Second,
		},
		LogLevel:   "info",
		LogService: "contactd",
	}
}

// Validate checks the configuration for fatal problems.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("jwt secret is required (CONTACTD_JWT_SECRET)"))
	}
	if len(c.JWTSecret) > 0 && len(c.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("jwt secret too short: %d bytes, need at least 32", len(c.JWTSecret)))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.EmailTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.RefreshTTL < c.AccessTTL {
		errs = append(errs, errors.New("refresh TTL must not be shorter than access TTL"))
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp from address is required when smtp host is set"))
	}
	return errors.Join(errs...)
}
