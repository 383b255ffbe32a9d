package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Nation</title>
  <item>
    <title>Dengue cases rise in Petaling Jaya</title>
    <link>https://www.thestar.com.my/news/nation/1</link>
    <description>Officials urged residents to clear stagnant water.</description>
    <pubDate>Mon, 10 Mar 2025 04:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Stock market update</title>
    <link>https://www.thestar.com.my/business/2</link>
  </item>
</channel>
</rss>`

func setupEnv(t *testing.T) {
	t.Helper()
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(feed.Close)

	dir := t.TempDir()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "mentions.db"))
	t.Setenv("RSS_FEEDS", feed.URL+"/rss")
	t.Setenv("ARCHIVE_DIR", filepath.Join(dir, "archive"))
	for _, key := range []string{
		"OPENROUTER_API_KEY", "EXA_API_KEY", "REDIS_URL", "AZURE_STORAGE_ACCOUNT",
		"TEAMS_WEBHOOK_URL", "NOTIFICATION_EMAIL",
	} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShieldctl_Workflow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "keywords", "add", "dengue")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "dengue"`)

	_, err = run(t, "keywords", "add", "Dengue")
	assert.True(t, errors.Is(err, models.ErrDuplicateKeyword))

	out, err = run(t, "keywords", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dengue")

	out, err = run(t, "scrape")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"scrape completed","inserted":1}`, out)

	out, err = run(t, "scrape")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"scrape completed","inserted":0}`, out)

	out, err = run(t, "archive", "list")
	require.NoError(t, err)
	files := strings.Fields(out)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0], runFilePrefix))

	out, err = run(t, "archive", "show", files[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Dengue cases rise in Petaling Jaya")
	assert.Contains(t, out, `"district": "Petaling"`)

	out, err = run(t, "check-sources")
	require.NoError(t, err)
	assert.Contains(t, out, "OK (2 items, 1 matching)")
	assert.Contains(t, out, "search:exa... DISABLED")

	_, err = run(t, "search")
	assert.True(t, errors.Is(err, models.ErrConfiguration))

	_, err = run(t, "keywords", "remove", "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestShieldctl_Jobs(t *testing.T) {
	setupEnv(t)

	for _, job := range []string{"backfill-locations", "clean-metadata"} {
		t.Run(job, func(t *testing.T) {
			out, err := run(t, job, "--limit", "5")
			require.NoError(t, err)
			assert.JSONEq(t, `{"processed":0,"updated":0}`, out)
		})
	}
}

func TestShieldctl_ArchiveNotConfigured(t *testing.T) {
	setupEnv(t)
	t.Setenv("ARCHIVE_DIR", "")

	_, err := run(t, "archive", "list")
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestShieldctl_CheckSourcesNeedsKeywords(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "check-sources")
	assert.True(t, errors.Is(err, models.ErrValidation))

	out, err := run(t, "check-sources", "--keyword", "stock")
	require.NoError(t, err)
	assert.Contains(t, out, "OK (2 items, 1 matching)")
}
