package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20, cfg.DB.MaxOpenConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Image.MaxPerBatch)
}

func TestLoad_EnvVarsOverrideDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("QUEUE_STALL_INTERVAL", "2m")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 50, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Queue.StallInterval)
}

func TestGetInt_InvalidValueFallsBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 20, cfg.DB.MaxOpenConns)
}
