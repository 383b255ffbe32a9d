package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleDigest() *models.Digest {
	mentions := make([]models.Mention, 0, 7)
	for i := 0; i < 7; i++ {
		mentions = append(mentions, models.Mention{
			Headline:  "Dengue update " + string(rune('A'+i)),
			Link:      "https://www.thestar.com.my/news/" + string(rune('a'+i)),
			MediaName: "The Star",
			Date:      models.NewDate(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
			Summary:   strings.Repeat("word ", 60),
			Location:  &models.Location{State: "Selangor", District: "Petaling"},
		})
	}
	return &models.Digest{
		GeneratedAt: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
		Run:         "scrape",
		Inserted:    7,
		BySource:    map[string]int{"The Star": 5, "Bernama": 1, "Malay Mail": 1},
		Mentions:    mentions,
	}
}

func TestRankSources(t *testing.T) {
	ranked := rankSources(map[string]int{"b": 1, "a": 1, "c": 3})
	assert.Equal(t, []sourceCount{{"c", 3}, {"a", 1}, {"b", 1}}, ranked)
}

func TestBuildTeamsMessage(t *testing.T) {
	msg := buildTeamsMessage(sampleDigest())

	assert.Equal(t, "MessageCard", msg.Type)
	assert.Contains(t, msg.Title, "7 new from scrape run")
	require.Len(t, msg.Sections, 2)

	facts := msg.Sections[0].Facts
	require.Len(t, facts, 5)
	assert.Equal(t, TeamsFact{Name: "The Star", Value: "5"}, facts[2])

	lines := strings.Split(msg.Sections[1].ActivityText, "\n\n")
	assert.Len(t, lines, TopMentions)
	assert.Contains(t, lines[0], "**[Dengue update A](https://www.thestar.com.my/news/a)** - The Star (Feb 1)")
}

func TestBuildEmail(t *testing.T) {
	digest := sampleDigest()

	html, err := buildEmailHTML(digest)
	require.NoError(t, err)
	assert.Contains(t, html, "scrape run finished on February 1, 2025")
	assert.Contains(t, html, "Dengue update E")
	assert.NotContains(t, html, "Dengue update F")
	assert.Contains(t, html, "Selangor, Petaling")

	text := buildEmailText(digest)
	assert.Contains(t, text, "New Mentions: 7")
	assert.Contains(t, text, "The Star: 5")
	assert.Contains(t, text, "5. Dengue update E")
	assert.NotContains(t, text, "6. ")
	assert.Contains(t, text, "Date: 2025-02-01")
}

func TestService_SendDigest(t *testing.T) {
	t.Run("Teams and email", func(t *testing.T) {
		var card TeamsMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&card))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		svc := NewService(&config.Config{
			TeamsWebhookURL:   server.URL,
			NotificationEmail: "ops@example.com",
			SMTPUsername:      "bot@example.com",
		})
		var sent *gomail.Message
		svc.send = func(m *gomail.Message) error {
			sent = m
			return nil
		}

		require.NoError(t, svc.SendDigest(sampleDigest()))
		assert.Equal(t, "MessageCard", card.Type)
		require.NotNil(t, sent)
		assert.Equal(t, []string{"ops@example.com"}, sent.GetHeader("To"))
		assert.Equal(t, []string{"Health Mentions Digest - 7 new (scrape)"}, sent.GetHeader("Subject"))
	})

	t.Run("Errors are collected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		svc := NewService(&config.Config{TeamsWebhookURL: server.URL, NotificationEmail: "ops@example.com"})
		svc.send = func(*gomail.Message) error { return errors.New("smtp down") }

		err := svc.SendDigest(sampleDigest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Teams: ")
		assert.Contains(t, err.Error(), "Email: ")
	})

	t.Run("Nothing configured", func(t *testing.T) {
		svc := NewService(&config.Config{})
		assert.False(t, svc.Enabled())
		assert.NoError(t, svc.SendDigest(sampleDigest()))
	})
}
