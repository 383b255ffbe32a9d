package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/monitoring"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseDriver:        storage.DriverSQLite,
		DatabaseURL:           ":memory:",
		ScrapeIntervalMinutes: 30,
		HTTPTimeout:           time.Second,
		StorageContainer:      "mentions",
	}
}

func TestNew_Minimal(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Archive)
	assert.Empty(t, a.Feeds)
	assert.False(t, a.Search.IsEnabled())

	result, err := a.Monitoring.RunScrape(ctx)
	require.NoError(t, err)
	assert.Equal(t, monitoring.NoKeywordsMessage, result.Message)

	_, err = a.Monitoring.RunSearch(ctx)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestNew_OptionalComponents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.ArchiveDir = t.TempDir()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.OpenRouterAPIKey = "test-key"
	cfg.ExaAPIKey = "exa-key"
	cfg.RSSFeeds = []string{"https://example.com/feed"}

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &storage.DirArchive{}, a.Archive)
	assert.Len(t, a.Feeds, 1)
	assert.True(t, a.Search.IsEnabled())

	result, err := a.Monitoring.RunScrape(ctx)
	require.NoError(t, err)
	assert.Equal(t, monitoring.NoKeywordsMessage, result.Message)
	assert.False(t, mr.Exists("mentions:lock:ingestion"))
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "Unknown driver", mutate: func(c *config.Config) { c.DatabaseDriver = "oracle" }},
		{name: "Bad Redis URL", mutate: func(c *config.Config) { c.RedisURL = "not-a-url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}
