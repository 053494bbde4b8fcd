package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "bluemoon.db", cfg.Database.URL)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "bluemoon.sid", cfg.Session.CookieName)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Session.SameSite())
	assert.Equal(t, "plain", cfg.PasswordScheme)
	assert.Equal(t, []string{"http://localhost:5000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "A1", cfg.Building.Code)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/bluemoon")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SAMESITE", "Strict")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PASSWORD_SCHEME", "BCRYPT")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/bluemoon", cfg.Database.URL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, http.SameSiteStrictMode, cfg.Session.SameSite())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "bcrypt", cfg.PasswordScheme)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad ttl":           {"SESSION_TTL": "forever"},
		"zero ttl":          {"SESSION_TTL": "0s"},
		"bad pool size":     {"DB_MAX_OPEN_CONNS": "many"},
		"samesite none":     {"COOKIE_SAMESITE": "None", "COOKIE_SECURE": "false"},
		"bad samesite":      {"COOKIE_SAMESITE": "Sometimes"},
		"bad scheme":        {"PASSWORD_SCHEME": "md5"},
		"bad log format":    {"LOG_FORMAT": "xml"},
		"prod default key":  {"APP_ENV": "production", "COOKIE_SECURE": "true"},
		"prod plain cookie": {"APP_ENV": "prod", "SESSION_SECRET": "s3cr3t-value"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnvProd(t *testing.T) {
	t.Setenv("APP_ENV", "release")
	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProdLike())
}
