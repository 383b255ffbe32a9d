package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const metadataSystemPrompt = `You clean and standardize metadata for Malaysian public health monitoring.
Given an article's URL, site text, and current fields, return a STRICT JSON object with keys:
- media_name: The site/publication name (e.g., The Star, Malay Mail, X, Reddit). Must be non-empty.
- keyword: ONE best keyword from the provided allowed list. Choose the single most relevant keyword; if none fits well, pick the closest.
- state: One of the official Malaysian states or federal territories.
- district: One of that state's districts (if reasonably inferable), else null.
- summary: ONE sentence summary (<= 30 words), neutral and factual, describing the main health-related point.

Always produce exactly this JSON shape:
{"media_name": "...", "keyword": "...", "state": "... or null", "district": "... or null", "summary": "..."}`

// MetadataGuess holds the model's raw suggestions. Fields may be empty or
// invalid and must be checked by the caller.
type MetadataGuess struct {
	MediaName string `json:"media_name"`
	Keyword   string `json:"keyword"`
	State     string `json:"state"`
	District  string `json:"district"`
	Summary   string `json:"summary"`
}

// MetadataGuesser fills missing mention metadata from article text
type MetadataGuesser struct {
	client Client
}

func NewMetadataGuesser(client Client) *MetadataGuesser {
	return &MetadataGuesser{client: client}
}

// Guess asks the model for all metadata fields at once.
func (g *MetadataGuesser) Guess(ctx context.Context, url, text string, allowed []string, currentMedia string) (MetadataGuess, bool) {
	var raw struct {
		MediaName *string `json:"media_name"`
		Keyword   *string `json:"keyword"`
		State     *string `json:"state"`
		District  *string `json:"district"`
		Summary   *string `json:"summary"`
	}
	req := Request{
		System:      metadataSystemPrompt,
		User:        metadataPrompt(url, text, allowed, currentMedia),
		Temperature: 0.2,
	}
	if err := complete(ctx, g.client, req, &raw); err != nil {
		logrus.Debugf("Metadata guess unavailable for %s: %v", url, err)
		return MetadataGuess{}, false
	}

	return MetadataGuess{
		MediaName: strings.TrimSpace(deref(raw.MediaName)),
		Keyword:   strings.TrimSpace(deref(raw.Keyword)),
		State:     strings.TrimSpace(deref(raw.State)),
		District:  strings.TrimSpace(deref(raw.District)),
		Summary:   strings.TrimSpace(deref(raw.Summary)),
	}, true
}

func metadataPrompt(url, text string, allowed []string, currentMedia string) string {
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	list := strings.Join(sorted, ", ")
	if list == "" {
		list = "(none provided)"
	}
	if currentMedia == "" {
		currentMedia = "null"
	}
	return fmt.Sprintf(
		"URL: %s\n\nAllowed keywords: [%s]\n\nCurrent media_name (may be wrong or missing): %s\n\nArticle text (truncated):\n%s\n\nReturn ONLY the JSON object.",
		url, list, currentMedia, Shorten(text, 8000),
	)
}
