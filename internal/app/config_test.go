package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresJWTSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ALGORITHM", "HS256")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ALGORITHM", "HS256")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.True(t, cfg.SeedOnStart)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.SMTP().Host)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis().Addr)
	assert.Equal(t, cfg.Redis().Addr, cfg.Asynq().Addr)
}

// godotenv never overrides variables already present, so the keys read from
// the file are unset first; t.Setenv restores them afterwards.
func TestLoadConfigReadsDotEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("JWT_TTL", "")
	os.Unsetenv("JWT_TTL")
	t.Setenv("SMTP_HOST", "")
	os.Unsetenv("SMTP_HOST")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nJWT_TTL=2h\nSMTP_HOST=smtp.example.com\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "smtp.example.com", cfg.SMTP().Host)
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&Config{LogFormat: "pretty", AppEnv: "production"}, &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
