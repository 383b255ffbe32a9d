package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// DefaultFeeds are the Malaysian news feeds scraped when none are configured
var DefaultFeeds = []string{
	"https://www.thestar.com.my/rss/News/Nation",
	"https://www.malaymail.com/feed/rss/malaysia",
	"https://www.malaysiakini.com/rss/en/news.rss",
	"https://bernama.com/en/rssfeed.php",
	"https://news.google.com/rss?hl=en-MY&gl=MY&ceid=MY:en",
	"https://news.google.com/rss?hl=ms-MY&gl=MY&ceid=MY:ms",
	"https://news.google.com/rss/search?q=Malaysia&hl=en-MY&gl=MY&ceid=MY:en",
	"https://www.freemalaysiatoday.com/feed",
	"https://www.theborneopost.com/feed",
	"https://www.nst.com.my/feed",
	"https://thesun.my/rss/local",
}

const userAgent = "HealthShieldMentionsBot/1.0"

// RSSSource reads one RSS or Atom feed
type RSSSource struct {
	feedURL string
	client  *resty.Client
	parser  *gofeed.Parser
}

// NewRSSSource creates a source for feedURL
func NewRSSSource(feedURL string, timeout time.Duration) *RSSSource {
	return &RSSSource{
		feedURL: feedURL,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
		parser: gofeed.NewParser(),
	}
}

// NewRSSSources creates one source per feed URL
func NewRSSSources(feedURLs []string, timeout time.Duration) []Source {
	out := make([]Source, 0, len(feedURLs))
	for _, f := range feedURLs {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, NewRSSSource(f, timeout))
		}
	}
	return out
}

func (r *RSSSource) GetName() string {
	u, err := url.Parse(r.feedURL)
	if err != nil || u.Host == "" {
		return "rss:" + r.feedURL
	}
	return "rss:" + u.Host + u.Path
}

func (r *RSSSource) IsEnabled() bool {
	return r.feedURL != ""
}

// FetchItems downloads and parses the feed. Keywords are matched downstream, not here.
func (r *RSSSource) FetchItems(ctx context.Context, _ []string) ([]Item, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8").
		Get(r.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", r.feedURL, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("feed %s returned status %d", r.feedURL, resp.StatusCode())
	}

	feed, err := r.parser.ParseString(resp.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", r.feedURL, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || (entry.Title == "" && entry.Link == "") {
			continue
		}
		items = append(items, toItem(entry))
	}

	logrus.Debugf("Parsed %d entries from %s", len(items), r.feedURL)
	return items, nil
}

func toItem(entry *gofeed.Item) Item {
	link := strings.TrimSpace(entry.Link)
	item := Item{
		Title:    strings.TrimSpace(entry.Title),
		Summary:  strings.TrimSpace(entry.Description),
		Link:     link,
		Outlet:   OutletFromLink(link),
		ImageURL: entryImage(entry),
	}

	switch {
	case entry.PublishedParsed != nil:
		item.Published = models.NewDate(entry.PublishedParsed.UTC())
	case entry.UpdatedParsed != nil:
		item.Published = models.NewDate(entry.UpdatedParsed.UTC())
	}

	return item
}

// entryImage looks at media:thumbnail, media:content, the item image and image enclosures in that order.
func entryImage(entry *gofeed.Item) string {
	if media, ok := entry.Extensions["media"]; ok {
		for _, name := range []string{"thumbnail", "content"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
