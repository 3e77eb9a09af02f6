package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)

	assert.Equal(t, 2000, cfg.Sync.DebounceMs)
	assert.Equal(t, 100, cfg.Sync.TranscriptCap)

	assert.Equal(t, "AGENT_PROCESS", cfg.Agent.ProcessSubject)
	assert.Equal(t, "AGENT_PROPOSAL", cfg.Agent.ProposalSubject)
	assert.Equal(t, 2*time.Hour, cfg.Agent.RoomTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8088")
	t.Setenv("AGENT_DEBOUNCE_MS", "1500")
	t.Setenv("ROOM_TTL_MINUTES", "30")

	cfg := Load()
	assert.Equal(t, "8088", cfg.App.Port)
	assert.Equal(t, 1500, cfg.Sync.DebounceMs)
	assert.Equal(t, 30*time.Minute, cfg.Agent.RoomTTL)
}

func TestGetEnvAsIntFallbackOnGarbage(t *testing.T) {
	t.Setenv("TRANSCRIPT_CAPACITY", "not-a-number")
	cfg := Load()
	assert.Equal(t, 100, cfg.Sync.TranscriptCap)
}
