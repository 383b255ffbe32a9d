package config

import (
	"errors"
	"testing"
	"time"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mentions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, sources.DefaultFeeds, cfg.RSSFeeds)
	assert.Equal(t, 30, cfg.ScrapeIntervalMinutes)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.EnableLLMLocation)
	assert.False(t, cfg.EnableRelevanceFilter)
	assert.Equal(t, 10, cfg.SearchMaxResults)
	assert.Equal(t, 0, cfg.SearchRecencyDays)
	assert.False(t, cfg.LLMEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:mentions.db")
	t.Setenv("RSS_FEEDS", "https://a.example/rss, ,https://b.example/rss")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("ENABLE_RELEVANCE_FILTER", "true")
	t.Setenv("SEARCH_RECENCY_DAYS", "14")
	t.Setenv("SCRAPE_INTERVAL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.RSSFeeds)
	assert.True(t, cfg.LLMEnabled())
	assert.True(t, cfg.EnableRelevanceFilter)
	assert.Equal(t, 14, cfg.SearchRecencyDays)
	assert.Equal(t, 30, cfg.ScrapeIntervalMinutes)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "Unknown driver",
			env:  map[string]string{"DATABASE_DRIVER": "mysql", "DATABASE_URL": "x"},
		},
		{
			name: "Missing database URL",
			env:  map[string]string{"DATABASE_DRIVER": "sqlite"},
		},
		{
			name: "Non-positive interval",
			env:  map[string]string{"DATABASE_URL": "x", "SCRAPE_INTERVAL_MINUTES": "0"},
		},
		{
			name: "Email without SMTP",
			env:  map[string]string{"DATABASE_URL": "x", "NOTIFICATION_EMAIL": "ops@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfiguration))
		})
	}
}
