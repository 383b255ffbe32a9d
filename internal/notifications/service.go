package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// TopMentions is how many headlines a digest lists
const TopMentions = 5

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
	send   func(m *gomail.Message) error
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
	s.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		return d.DialAndSend(m)
	}
	return s
}

// Enabled reports whether any channel is configured
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendDigest sends the triage digest via configured notification channels
func (s *Service) SendDigest(digest *models.Digest) error {
	var errors []string

	// Send to Teams if configured
	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(digest); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent digest to Teams")
		}
	}

	// Send via email if configured
	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(digest); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(digest *models.Digest) error {
	message := buildTeamsMessage(digest)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

type sourceCount struct {
	Source string
	Count  int
}

// rankSources orders the per-source counts, largest first.
func rankSources(bySource map[string]int) []sourceCount {
	ranked := make([]sourceCount, 0, len(bySource))
	for source, count := range bySource {
		ranked = append(ranked, sourceCount{source, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Source < ranked[j].Source
	})
	return ranked
}

func topMentions(digest *models.Digest) []models.Mention {
	if len(digest.Mentions) <= TopMentions {
		return digest.Mentions
	}
	return digest.Mentions[:TopMentions]
}

func buildTeamsMessage(digest *models.Digest) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Health Mentions - %d new from %s run", digest.Inserted, digest.Run),
		Text:    fmt.Sprintf("%d unverified mentions are waiting for review", digest.Inserted),
	}

	facts := []TeamsFact{
		{Name: "New Mentions", Value: fmt.Sprintf("%d", digest.Inserted)},
		{Name: "Generated", Value: digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	for _, sc := range rankSources(digest.BySource) {
		facts = append(facts, TeamsFact{Name: sc.Source, Value: fmt.Sprintf("%d", sc.Count)})
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if top := topMentions(digest); len(top) > 0 {
		var lines []string
		for _, mention := range top {
			lines = append(lines, fmt.Sprintf("**[%s](%s)** - %s (%s)",
				mention.Headline, mention.Link, mentionSource(mention), mention.Date.Format("Jan 2")))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Latest Mentions",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func mentionSource(m models.Mention) string {
	if m.MediaName != "" {
		return m.MediaName
	}
	return m.DataSource
}

func (s *Service) sendEmail(digest *models.Digest) error {
	subject := fmt.Sprintf("Health Mentions Digest - %d new (%s)", digest.Inserted, digest.Run)

	htmlBody, err := buildEmailHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	// Create message
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(digest))
	m.AddAlternative("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Health Mentions Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #00796b; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .mention { border-left: 4px solid #00796b; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .mention-title { font-weight: bold; margin-bottom: 5px; }
        .mention-meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Health Mentions Digest</h1>
        <p>{{.Digest.Run}} run finished on {{.Digest.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>New Mentions:</strong> {{.Digest.Inserted}}</p>
        {{range .Sources}}
            <p><strong>{{.Source}}:</strong> {{.Count}}</p>
        {{end}}
    </div>

    {{if .Top}}
    <h2>Latest Mentions</h2>
    {{range .Top}}
        <div class="mention">
            <div class="mention-title">
                <a href="{{.Link}}" target="_blank">{{.Headline}}</a>
            </div>
            <div class="mention-meta">
                {{.MediaName}} | {{.Date}}{{if .Location}}{{if .Location.State}} | {{.Location.State}}{{end}}{{if .Location.District}}, {{.Location.District}}{{end}}{{end}}
            </div>
            {{if .Summary}}
            <p>{{.Summary | truncate 200}}</p>
            {{end}}
        </div>
    {{end}}
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by the Health Mentions Bot. New mentions are unverified.</small></p>
</body>
</html>
`

var emailHTML = template.Must(template.New("email").Funcs(template.FuncMap{
	"truncate": truncate,
}).Parse(emailTemplate))

func truncate(length int, s string) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

func buildEmailHTML(digest *models.Digest) (string, error) {
	var buf bytes.Buffer
	err := emailHTML.Execute(&buf, struct {
		Digest  *models.Digest
		Sources []sourceCount
		Top     []models.Mention
	}{digest, rankSources(digest.BySource), topMentions(digest)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(digest *models.Digest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Health Mentions Digest - %s run\n", digest.Run))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("New Mentions: %d\n", digest.Inserted))
	for _, sc := range rankSources(digest.BySource) {
		text.WriteString(fmt.Sprintf("%s: %d\n", sc.Source, sc.Count))
	}

	if top := topMentions(digest); len(top) > 0 {
		text.WriteString("\nLATEST MENTIONS\n")
		text.WriteString("===============\n")

		for i, mention := range top {
			text.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, mention.Headline))
			text.WriteString(fmt.Sprintf("   Source: %s | Date: %s\n", mentionSource(mention), mention.Date))
			text.WriteString(fmt.Sprintf("   URL: %s\n", mention.Link))
			if mention.Summary != "" {
				text.WriteString(fmt.Sprintf("   Summary: %s\n", truncate(200, mention.Summary)))
			}
		}
	}

	text.WriteString("\n---\nThis digest was generated automatically by the Health Mentions Bot.\n")

	return text.String()
}
