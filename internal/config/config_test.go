// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONTACTD_JWT_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/contactd", cfg.DataDir)
	assert.Equal(t, "/var/lib/contactd/contactd.db", cfg.DBPath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2, cfg.RateLimit.MutateLimit)
}

func TestLoadMissingSecretFails(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoadShortSecretFails(t *testing.T) {
	t.Setenv("CONTACTD_JWT_SECRET", "short")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
data_dir: "/tmp/contactd-test"
jwt_secret: "`+testSecret+`"
access_ttl: 5m
redis:
  addr: "localhost:6379"
  db: 2
smtp:
  host: "smtp.example.net"
  from: "noreply@example.net"
rate_limit:
  enabled: false
`), 0o600))

	t.Setenv("CONTACTD_LISTEN", ":7000")
	t.Setenv("CONTACTD_ACCESS_TTL", "10m")

	cfg, err := Load(path)
	require.NoError(t, err)

	// ENV wins over file
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Minute, cfg.AccessTTL)
	// File wins over defaults
	assert.Equal(t, "/tmp/contactd-test", cfg.DataDir)
	assert.Equal(t, "/tmp/contactd-test/contactd.db", cfg.DBPath)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "smtp.example.net", cfg.SMTP.Host)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsUnknownFileKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key: true\n"), 0o600))

	t.Setenv("CONTACTD_JWT_SECRET", testSecret)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadSMTPRequiresFrom(t *testing.T) {
	t.Setenv("CONTACTD_JWT_SECRET", testSecret)
	t.Setenv("CONTACTD_SMTP_HOST", "smtp.example.net")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from address")
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "not-a-number")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 42, ParseInt("X_INT", 42))
	assert.True(t, ParseBool("X_BOOL", true))
	assert.Equal(t, time.Minute, ParseDuration("X_DUR", time.Minute))
}
