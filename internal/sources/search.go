package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DefaultExaBaseURL is the Exa API endpoint used when none is configured
const DefaultExaBaseURL = "https://api.exa.ai"

// TrustedOutlets bias search queries toward established Malaysian publications
var TrustedOutlets = []string{
	"The Star", "Malay Mail", "New Straits Times", "Bernama",
	"Free Malaysia Today", "Malaysiakini", "The Borneo Post",
}

// ExcludedDomains never yield useful health reporting
var ExcludedDomains = []string{
	"wikipedia.org", "facebook.com", "instagram.com", "tiktok.com",
	"pinterest.com", "amazon.com", "shopee.com.my", "lazada.com.my",
}

// SearchOptions controls one search request
type SearchOptions struct {
	MaxResults     int
	RecencyDays    int // 0 restricts to the current calendar year
	ExcludeDomains []string
	IncludeDomains []string
}

// SearchResult is one normalized search hit
type SearchResult struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Score     float64 `json:"score"`
	Published string  `json:"published"`
	Text      string  `json:"text,omitempty"`
}

// ExaClient talks to the Exa search and contents APIs
type ExaClient struct {
	apiKey string
	client *resty.Client
	now    func() time.Time
}

// NewExaClient creates a client; an empty apiKey leaves it disabled
func NewExaClient(apiKey, baseURL string, timeout time.Duration) *ExaClient {
	if baseURL == "" {
		baseURL = DefaultExaBaseURL
	}
	return &ExaClient{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("x-api-key", apiKey),
		now: time.Now,
	}
}

// Enabled reports whether an API key is configured.
func (c *ExaClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// BuildQuery joins keywords into an OR query biased toward Malaysian health news and trusted outlets.
func BuildQuery(keywords []string) string {
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			kw = `"` + kw + `"`
		}
		terms = append(terms, kw)
	}
	if len(terms) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s) Malaysia health news (%s)",
		strings.Join(terms, " OR "), strings.Join(TrustedOutlets, " OR "))
}

// StartPublishedDate is the lower bound of the recency window.
func StartPublishedDate(now time.Time, recencyDays int) time.Time {
	now = now.UTC()
	if recencyDays > 0 {
		return now.AddDate(0, 0, -recencyDays)
	}
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Search runs a keyword search restricted to the recency window.
func (c *ExaClient) Search(ctx context.Context, keywords []string, opts SearchOptions) ([]SearchResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: EXA_API_KEY is not set", models.ErrConfiguration)
	}
	query := BuildQuery(keywords)
	if query == "" {
		return nil, nil
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}

	body := map[string]interface{}{
		"query":              query,
		"numResults":         opts.MaxResults,
		"startPublishedDate": StartPublishedDate(c.now(), opts.RecencyDays).Format("2006-01-02T15:04:05.000Z"),
		"contents": map[string]interface{}{
			"text": map[string]interface{}{"maxCharacters": 1000},
		},
	}
	if len(opts.ExcludeDomains) > 0 {
		body["excludeDomains"] = opts.ExcludeDomains
	}
	if len(opts.IncludeDomains) > 0 {
		body["includeDomains"] = opts.IncludeDomains
	}

	resp, err := c.client.R().SetContext(ctx).SetBody(body).Post("/search")
	if err != nil {
		return nil, fmt.Errorf("failed to call search API: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var results []SearchResult
	for _, r := range resultsOf(resp.String()) {
		u := firstString(r, "url", "link")
		if u == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:     firstString(r, "title"),
			URL:       u,
			Score:     r.Get("score").Float(),
			Published: firstString(r, "publishedDate", "published_date", "published", "date"),
			Text:      firstString(r, "text", "content"),
		})
	}

	logrus.Debugf("Search returned %d results for %q", len(results), query)
	return results, nil
}

// Contents fetches extracted page text for url through the contents API.
func (c *ExaClient) Contents(ctx context.Context, url string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: EXA_API_KEY is not set", models.ErrConfiguration)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"urls": []string{url}, "text": true}).
		Post("/contents")
	if err != nil {
		return "", fmt.Errorf("failed to call contents API: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("contents API returned status %d", resp.StatusCode())
	}

	for _, r := range resultsOf(resp.String()) {
		if text := strings.TrimSpace(firstString(r, "text", "content")); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// resultsOf accepts {"results": [...]}, {"data": {"results": [...]}} or a bare array.
func resultsOf(body string) []gjson.Result {
	root := gjson.Parse(body)
	for _, path := range []string{"results", "data.results"} {
		if r := root.Get(path); r.IsArray() {
			return r.Array()
		}
	}
	if root.IsArray() {
		return root.Array()
	}
	return nil
}

func firstString(r gjson.Result, names ...string) string {
	for _, n := range names {
		if v := r.Get(n); v.Exists() && v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// SearchSource adapts ExaClient to Source
type SearchSource struct {
	exa  *ExaClient
	opts SearchOptions
}

// NewSearchSource creates a keyword-driven search source
func NewSearchSource(exa *ExaClient, opts SearchOptions) *SearchSource {
	return &SearchSource{exa: exa, opts: opts}
}

func (s *SearchSource) GetName() string {
	return "search:exa"
}

func (s *SearchSource) IsEnabled() bool {
	return s.exa.Enabled()
}

// FetchItems searches for keywords and normalizes the hits.
func (s *SearchSource) FetchItems(ctx context.Context, keywords []string) ([]Item, error) {
	results, err := s.exa.Search(ctx, keywords, s.opts)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(results))
	for _, r := range results {
		item := Item{
			Title:   strings.TrimSpace(r.Title),
			Summary: strings.TrimSpace(r.Text),
			Link:    r.URL,
			Outlet:  MediaNameFromURL(r.URL),
			Score:   r.Score,
		}
		if r.Published != "" {
			if d, err := models.ParseDate(r.Published); err == nil {
				item.Published = d
			}
		}
		items = append(items, item)
	}
	return items, nil
}
