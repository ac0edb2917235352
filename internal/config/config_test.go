package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.MaxRoomSize)
	assert.Equal(t, 30*time.Minute, cfg.RoundTime())
	assert.Equal(t, 5*time.Second, cfg.RoundGrace())
	assert.Equal(t, 30*time.Second, cfg.SweepInterval())
	assert.Equal(t, uint16(8085), cfg.HttpServerPort)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAX_ROOM_SIZE", "4")
	t.Setenv("PROBLEM_TIME", "10")
	t.Setenv("SOCKET_TIMEOUT", "5000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxRoomSize)
	assert.Equal(t, 10*time.Minute, cfg.RoundTime())
	assert.Equal(t, 5*time.Second, cfg.SweepInterval())
}

func TestValidation(t *testing.T) {
	t.Setenv("MAX_ROOM_SIZE", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}
