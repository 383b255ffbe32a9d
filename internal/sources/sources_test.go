package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Nation</title>
    <item>
      <title>Dengue cases rise in Petaling Jaya</title>
      <link>https://www.thestar.com.my/news/nation/2025/02/01/dengue</link>
      <description>Health officials urge residents to clear breeding sites.</description>
      <pubDate>Sat, 01 Feb 2025 08:30:00 +0800</pubDate>
      <media:thumbnail url="https://img.thestar.com.my/dengue.jpg"/>
    </item>
    <item>
      <title>Unknown outlet story</title>
      <link>https://blog.example.org/post</link>
      <enclosure url="https://blog.example.org/cover.png" type="image/png" length="100"/>
    </item>
    <item>
      <title>No date item</title>
      <link>https://www.malaymail.com/news/x</link>
    </item>
  </channel>
</rss>`

func TestMediaNameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "Known host", url: "https://www.thestar.com.my/news/1", expected: "The Star"},
		{name: "Known host without www", url: "https://bernama.com/en/news.php", expected: "Bernama"},
		{name: "Twitter maps to X", url: "https://twitter.com/moh/status/1", expected: "X"},
		{name: "Hyphenated domain", url: "https://my-site.com/a", expected: "My Site"},
		{name: "Country code second level", url: "https://www.sinarharian.com.my/article", expected: "Sinarharian"},
		{name: "Host case ignored", url: "https://WWW.MALAYMAIL.COM/x", expected: "Malay Mail"},
		{name: "Single label host", url: "http://localhost/x", expected: "localhost"},
		{name: "Empty", url: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MediaNameFromURL(tt.url))
		})
	}
}

func TestOutletFromLink(t *testing.T) {
	assert.Equal(t, "Malay Mail", OutletFromLink("https://www.malaymail.com/news/1"))
	assert.Equal(t, "", OutletFromLink("https://unknown.example.com/news/1"))
	assert.Equal(t, "", OutletFromLink("::not a url"))
}

func TestRSSSource_FetchItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, sampleFeed)
	}))
	defer server.Close()

	source := NewRSSSource(server.URL+"/rss/nation", 5*time.Second)
	assert.True(t, source.IsEnabled())
	assert.Contains(t, source.GetName(), "rss:")

	items, err := source.FetchItems(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "Dengue cases rise in Petaling Jaya", first.Title)
	assert.Equal(t, "Health officials urge residents to clear breeding sites.", first.Summary)
	assert.Equal(t, "The Star", first.Outlet)
	assert.Equal(t, "https://img.thestar.com.my/dengue.jpg", first.ImageURL)
	// 08:30 +08:00 is 00:30 UTC on the same day.
	assert.Equal(t, "2025-02-01", first.Published.String())

	second := items[1]
	assert.Equal(t, "", second.Outlet)
	assert.Equal(t, "https://blog.example.org/cover.png", second.ImageURL)

	third := items[2]
	assert.True(t, third.Published.IsZero())
	assert.Equal(t, "Malay Mail", third.Outlet)
}

func TestRSSSource_Failures(t *testing.T) {
	t.Run("HTTP error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewRSSSource(server.URL, 5*time.Second).FetchItems(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("Unparseable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "this is not a feed")
		}))
		defer server.Close()

		_, err := NewRSSSource(server.URL, 5*time.Second).FetchItems(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestNewRSSSources_SkipsBlank(t *testing.T) {
	srcs := NewRSSSources([]string{"https://a.example/feed", " ", ""}, time.Second)
	assert.Len(t, srcs, 1)
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery([]string{"dengue", "hand foot mouth", " "})
	assert.Contains(t, q, `(dengue OR "hand foot mouth") Malaysia health news`)
	assert.Contains(t, q, "The Star OR Malay Mail")
	assert.Equal(t, "", BuildQuery(nil))
}

func TestStartPublishedDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), StartPublishedDate(now, 0))
	assert.Equal(t, time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC), StartPublishedDate(now, 7))
}

func TestExaClient_Search(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "Object with results",
			body: `{"results":[{"title":"Dengue alert","url":"https://www.nst.com.my/a","score":0.8,"publishedDate":"2025-05-02T00:00:00.000Z","text":"Dengue cases up."}]}`,
		},
		{
			name: "Nested data mapping",
			body: `{"data":{"results":[{"title":"Dengue alert","url":"https://www.nst.com.my/a","score":0.8,"published_date":"2025-05-02","content":"Dengue cases up."}]}}`,
		},
		{
			name: "Bare array",
			body: `[{"title":"Dengue alert","url":"https://www.nst.com.my/a","score":0.8,"date":"2025-05-02","text":"Dengue cases up."}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewExaClient("test-key", server.URL, 5*time.Second)
			client.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

			results, err := client.Search(context.Background(), []string{"dengue"}, SearchOptions{
				MaxResults:     5,
				ExcludeDomains: []string{"wikipedia.org"},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "Dengue alert", results[0].Title)
			assert.Equal(t, "https://www.nst.com.my/a", results[0].URL)
			assert.InDelta(t, 0.8, results[0].Score, 1e-9)
			assert.Contains(t, results[0].Published, "2025-05-02")
			assert.Equal(t, "Dengue cases up.", results[0].Text)

			assert.Equal(t, float64(5), received["numResults"])
			assert.Equal(t, "2025-01-01T00:00:00.000Z", received["startPublishedDate"])
			assert.Equal(t, []interface{}{"wikipedia.org"}, received["excludeDomains"])
		})
	}
}

func TestExaClient_Disabled(t *testing.T) {
	client := NewExaClient("", "", time.Second)
	assert.False(t, client.Enabled())

	_, err := client.Search(context.Background(), []string{"dengue"}, SearchOptions{})
	assert.True(t, errors.Is(err, models.ErrConfiguration))

	_, err = client.Contents(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestExaClient_Contents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contents", r.URL.Path)
		io.WriteString(w, `{"results":[{"url":"https://example.com","content":"  Full article body.  "}]}`)
	}))
	defer server.Close()

	text, err := NewExaClient("k", server.URL, time.Second).Contents(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Full article body.", text)
}

func TestSearchSource_FetchItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results":[
			{"title":"Measles in Sabah","url":"https://news.example-health.com/m","score":0.5,"publishedDate":"2025-04-10T03:00:00Z","text":"Measles spreads."},
			{"title":"No url"},
			{"title":"Undated","url":"https://www.bernama.com/u"}
		]}`)
	}))
	defer server.Close()

	source := NewSearchSource(NewExaClient("k", server.URL, time.Second), SearchOptions{})
	assert.True(t, source.IsEnabled())
	assert.Equal(t, "search:exa", source.GetName())

	items, err := source.FetchItems(context.Background(), []string{"measles"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Example Health", items[0].Outlet)
	assert.Equal(t, "2025-04-10", items[0].Published.String())
	assert.Equal(t, "Measles spreads.", items[0].Summary)
	assert.Equal(t, "Bernama", items[1].Outlet)
	assert.True(t, items[1].Published.IsZero())
}
