package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFileName(t *testing.T) {
	at := time.Date(2025, 3, 9, 7, 5, 1, 250*int(time.Millisecond), time.UTC)
	assert.Equal(t, "mentions-scrape-2025-03-09-07-05-01.250.json", RunFileName("scrape", at))
	assert.Equal(t, "mentions-search-2025-03-09-07-05-01.250.json", RunFileName("search", at))
	assert.NotEqual(t, RunFileName("scrape", at), RunFileName("scrape", at.Add(time.Millisecond)))
}

func TestArchiveRun_SameSecondRunsKeepBothFiles(t *testing.T) {
	ctx := context.Background()
	archive, err := NewDirArchive(t.TempDir())
	require.NoError(t, err)

	finished := time.Date(2025, 3, 9, 7, 5, 1, 0, time.UTC)
	scrape, err := ArchiveRun(ctx, archive, "scrape", finished, []models.Mention{{ID: "1", Headline: "From feeds"}})
	require.NoError(t, err)
	search, err := ArchiveRun(ctx, archive, "search", finished.Add(300*time.Millisecond), []models.Mention{{ID: "2", Headline: "From search"}})
	require.NoError(t, err)
	require.NotEqual(t, scrape, search)

	names, err := archive.List(ctx, "mentions-")
	require.NoError(t, err)
	assert.Len(t, names, 2)

	for name, headline := range map[string]string{scrape: "From feeds", search: "From search"} {
		rec, err := LoadRun(ctx, archive, name)
		require.NoError(t, err)
		require.Len(t, rec.Mentions, 1)
		assert.Equal(t, headline, rec.Mentions[0].Headline)
	}
}

func TestDirArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	archive, err := NewDirArchive(t.TempDir())
	require.NoError(t, err)

	finished := time.Date(2025, 3, 9, 7, 5, 1, 0, time.UTC)
	name, err := ArchiveRun(ctx, archive, "rss", finished, []models.Mention{
		{ID: "1", Headline: "Dengue cases rise", Link: "https://example.com/1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mentions-rss-2025-03-09-07-05-01.000.json", name)

	names, err := archive.List(ctx, "mentions-")
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	rec, err := LoadRun(ctx, archive, name)
	require.NoError(t, err)
	assert.Equal(t, "rss", rec.Run)
	require.Len(t, rec.Mentions, 1)
	assert.Equal(t, "Dengue cases rise", rec.Mentions[0].Headline)

	_, err = archive.Retrieve(ctx, "mentions-missing.json")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = archive.Store(ctx, "../escape.json", []byte("{}"))
	assert.True(t, errors.Is(err, models.ErrValidation))
}
