// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, overlaid with the YAML
// file at path (if non-empty), overlaid with CONTACTD_* environment variables,
// then validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	mergeEnv(&cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = cfg.DataDir + "/contactd.db"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-provided configuration
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func mergeEnv(cfg *Config) {
	cfg.ListenAddr = ParseString("CONTACTD_LISTEN", cfg.ListenAddr)
	cfg.DataDir = ParseString("CONTACTD_DATA", cfg.DataDir)
	cfg.DBPath = ParseString("CONTACTD_DB_PATH", cfg.DBPath)
	cfg.PublicURL = ParseString("CONTACTD_PUBLIC_URL", cfg.PublicURL)

	if raw := ParseString("CONTACTD_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = splitCSV(raw)
	}

	cfg.JWTSecret = ParseString("CONTACTD_JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTTL = ParseDuration("CONTACTD_ACCESS_TTL", cfg.AccessTTL)
	cfg.RefreshTTL = ParseDuration("CONTACTD_REFRESH_TTL", cfg.RefreshTTL)
	cfg.EmailTTL = ParseDuration("CONTACTD_EMAIL_TTL", cfg.EmailTTL)

	cfg.Redis.Addr = ParseString("CONTACTD_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = ParseString("CONTACTD_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = ParseInt("CONTACTD_REDIS_DB", cfg.Redis.DB)

	cfg.SMTP.Host = ParseString("CONTACTD_SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = ParseInt("CONTACTD_SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = ParseString("CONTACTD_SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = ParseString("CONTACTD_SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.SMTP.From = ParseString("CONTACTD_SMTP_FROM", cfg.SMTP.From)

	cfg.RateLimit.Enabled = ParseBool("CONTACTD_RATELIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.GlobalLimit = ParseInt("CONTACTD_RATELIMIT_GLOBAL", cfg.RateLimit.GlobalLimit)
	cfg.RateLimit.GlobalWindow = ParseDuration("CONTACTD_RATELIMIT_GLOBAL_WINDOW", cfg.RateLimit.GlobalWindow)
	cfg.RateLimit.MutateLimit = ParseInt("CONTACTD_RATELIMIT_MUTATE", cfg.RateLimit.MutateLimit)
	cfg.RateLimit.MutateWindow = ParseDuration("CONTACTD_RATELIMIT_MUTATE_WINDOW", cfg.RateLimit.MutateWindow)

	cfg.LogLevel = ParseString("CONTACTD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("CONTACTD_LOG_SERVICE", cfg.LogService)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
