package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLICKPICK_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	t.Setenv("FLICKPICK_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSigningSecret)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FLICKPICK_JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownStoreDriver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLICKPICK_JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("PORT", "9090")
	t.Setenv("FLICKPICK_AUTH_BCRYPT_COST", "99")
	t.Setenv("FLICKPICK_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MINIO_USE_SSL", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Auth.BcryptCost, "out of range cost falls back to default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/d?sslmode=disable", p.DSN())
}
