package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("MAX_FLYER_SIZE", "")
	t.Setenv("MINIO_BUCKET", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, time.Duration(0), cfg.JWTExpiry, "Tokens should not expire by default")
	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.MaxFlyerSize)
	assert.Equal(t, 30*time.Second, cfg.CreateLockTTL)
	assert.Equal(t, "flyers", cfg.Minio.Bucket)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MAX_FLYER_SIZE", "1024")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxFlyerSize)
	assert.True(t, cfg.Minio.UseSSL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY", "not-a-duration")
	t.Setenv("MAX_FLYER_SIZE", "lots")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.JWTExpiry)
	assert.Equal(t, int64(5<<20), cfg.MaxFlyerSize)
	assert.False(t, cfg.Minio.UseSSL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "  ")

	cfg, err := Load()

	assert.ErrorIs(t, err, ErrMissingJWTSecret)
	assert.Nil(t, cfg)
}
