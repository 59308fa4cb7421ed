package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("VAPID_PUBLIC_KEY", "")
	t.Setenv("VAPID_PRIVATE_KEY", "")
	t.Setenv("VAPID_SUBJECT", "")

	require.NoError(t, Load())

	assert.Equal(t, "8080", AppConfig.ServerPort)
	assert.Equal(t, "development", AppConfig.Environment)
	assert.Equal(t, []string{"*"}, AppConfig.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, AppConfig.TokenTTL)
	assert.Equal(t, "mailto:info@jmbelectrical.co.za", AppConfig.VAPIDSubject)
	assert.False(t, AppConfig.PushEnabled())
}

func TestLoad_YAMLFileUnderEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database_url: postgres://file/jmb
port: "9000"
token_ttl: 2h
allowed_origins:
  - https://jmb.example
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "9100")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	require.NoError(t, Load())

	assert.Equal(t, "postgres://file/jmb", AppConfig.DatabaseURL)
	assert.Equal(t, "9100", AppConfig.ServerPort)
	assert.Equal(t, 2*time.Hour, AppConfig.TokenTTL)
	assert.Equal(t, []string{"https://jmb.example"}, AppConfig.AllowedOrigins)
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ENVIRONMENT", "")

	require.NoError(t, Load())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, AppConfig.AllowedOrigins)
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TOKEN_TTL", "forever")

	assert.Error(t, Load())
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://x",
		JWTSecret:      defaultJWTSecret,
		Environment:    "production",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"https://jmb.example"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRequiresExplicitOrigins(t *testing.T) {
	cfg := &Config{
		DatabaseURL:    "postgres://x",
		JWTSecret:      "s3cret",
		Environment:    "production",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"https://jmb.example", "*"},
	}
	assert.True(t, cfg.AllowsAnyOrigin())
	assert.EqualError(t, cfg.Validate(), "ALLOWED_ORIGINS must list explicit origins in production")

	cfg.AllowedOrigins = nil
	assert.True(t, cfg.AllowsAnyOrigin())
	assert.Error(t, cfg.Validate())

	cfg.AllowedOrigins = []string{"https://jmb.example"}
	assert.False(t, cfg.AllowsAnyOrigin())
	assert.NoError(t, cfg.Validate())

	cfg.Environment = "development"
	cfg.AllowedOrigins = []string{"*"}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProductionWithDefaultOriginsFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	assert.Error(t, Load())

	t.Setenv("ALLOWED_ORIGINS", "https://jmb.example")
	require.NoError(t, Load())
	assert.False(t, AppConfig.AllowsAnyOrigin())
}
