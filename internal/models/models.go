package models

import "time"

// Data sources a mention can come from
const (
	DataSourceNews   = "News Outlet"
	DataSourceSocial = "Social Media"
	DataSourceSearch = "Web Search"
)

// Media types stored alongside the data source
const (
	MediaTypeNews   = "news article"
	MediaTypeSocial = "social media"
	MediaTypeWeb    = "web article"
)

// StatusUnverified is the status every new mention starts with
const StatusUnverified = "unverified"

// Mention represents a single observed health-related item
type Mention struct {
	ID          string      `db:"id" json:"id"`
	Date        Date        `db:"date" json:"date"`
	DataSource  string      `db:"data_source" json:"data_source"`
	Headline    string      `db:"headline" json:"headline"`
	Summary     string      `db:"summary" json:"summary"`
	ImageURL    string      `db:"image_url" json:"image_url"`
	Link        string      `db:"link" json:"link"`
	MediaType   string      `db:"media_type" json:"media_type"`
	MediaOutlet string      `db:"media_outlet" json:"media_outlet"`
	MediaName   string      `db:"media_name" json:"media_name"`
	Status      string      `db:"status" json:"status"`
	Keywords    StringSlice `db:"keywords" json:"keywords"`
	Engagement  int         `db:"engagement" json:"engagement"`
	Location    *Location   `db:"location" json:"location"`
	CreatedAt   string      `db:"created_at" json:"created_at"`
}

// Keyword is an operator-managed trigger term
type Keyword struct {
	ID        string `db:"id" json:"id"`
	Keyword   string `db:"keyword" json:"keyword"`
	Enabled   bool   `db:"enabled" json:"enabled"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// KeywordTexts returns the keyword strings in their stored order.
func KeywordTexts(keywords []Keyword) []string {
	texts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		texts = append(texts, k.Keyword)
	}
	return texts
}

// ListFilter narrows a mention listing. Dates are inclusive YYYY-MM-DD bounds.
type ListFilter struct {
	StartDate  string
	EndDate    string
	DataSource string
	Status     string
	Keywords   []string
	Page       int
	PageSize   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize applies paging defaults and bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset is the number of rows skipped before the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// MentionPatch carries the fields to overwrite on an existing mention.
// Nil fields are left untouched.
type MentionPatch struct {
	Status    *string
	MediaName *string
	Summary   *string
	Keywords  []string
	Location  *Location
}

// IsEmpty reports whether the patch would change nothing.
func (p MentionPatch) IsEmpty() bool {
	return p.Status == nil && p.MediaName == nil && p.Summary == nil && p.Keywords == nil && p.Location == nil
}

// Digest summarizes the mentions inserted by one ingestion run for operator triage
type Digest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Run         string         `json:"run"`
	Inserted    int            `json:"inserted"`
	BySource    map[string]int `json:"by_source"`
	Mentions    []Mention      `json:"mentions"`
}
