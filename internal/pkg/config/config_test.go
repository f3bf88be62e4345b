package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires postgres password", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "")
		t.Setenv("JWT_SECRET_KEY", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
	})

	t.Run("requires jwt secret", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("JWT_SECRET_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	})

	t.Run("defaults and overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SESSION_SECRET", "")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("PLANNER_DRAFT_TTL", "90m")
		t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8091", cfg.ServerPort)
		assert.Equal(t, 3, cfg.Repositories.Redis.DB)
		assert.Equal(t, 90*time.Minute, cfg.Planner.DraftTTL)
		assert.Equal(t, int32(30), cfg.Repositories.Postgres.MaxConns)
		assert.Equal(t, "secret", cfg.Auth.SessionSecret)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Auth.AllowedOrigins)
	})
}
