package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "storage", cfg.StorageDir)
	require.Equal(t, "http://rag-core:8000", cfg.RAGBaseURL)
	require.Equal(t, 60*time.Second, cfg.RAGTimeout)
	require.Equal(t, 10.0, cfg.BotRateLimit)
	require.Equal(t, 20, cfg.BotRateBurst)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("RAG_TIMEOUT", "15s")
	t.Setenv("BOT_RATE_LIMIT", "2.5")
	t.Setenv("BOT_RATE_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9999", cfg.Port)
	require.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseURL)
	require.Equal(t, 15*time.Second, cfg.RAGTimeout)
	require.Equal(t, 2.5, cfg.BotRateLimit)
	require.Equal(t, 5, cfg.BotRateBurst)
}

func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("RAG_TIMEOUT", "not-a-duration")
	t.Setenv("BOT_RATE_BURST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 60*time.Second, cfg.RAGTimeout)
	require.Equal(t, 20, cfg.BotRateBurst)
}
