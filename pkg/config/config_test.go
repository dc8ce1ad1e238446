package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefectoYEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOGIN_WINDOW_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "tarifarios-api", cfg.JWT.Issuer)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, time.Minute, cfg.Login.Window)
	assert.Equal(t, 5, cfg.Login.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SecretVacioFallaAlArrancar(t *testing.T) {
	cfg := &Config{Login: LoginConfig{MaxAttempts: 5, Window: time.Minute}}
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "   "
	assert.Error(t, cfg.Validate())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "tarifarios", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/tarifarios?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
