package llm

import (
	"context"
	"encoding/json"

	"github.com/healthshield/mentions-bot/internal/location"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/sirupsen/logrus"
)

const locationSystemPrompt = `You are a data extraction assistant. Given Malaysian news text, extract the precise state and district in Malaysia that the text most likely refers to.
Respond in STRICT JSON with keys: state, district. Use official Malaysian state and district names. If unknown, use null. Examples:
{"state": "Selangor", "district": "Petaling"}
{"state": "Pulau Pinang", "district": "Timur Laut"}
{"state": "Negeri Sembilan", "district": null}
{"state": null, "district": null}`

type locationGuess struct {
	State    *string `json:"state"`
	District *string `json:"district"`
}

// LocationExtractor asks the model where an article is set
type LocationExtractor struct {
	client Client
}

func NewLocationExtractor(client Client) *LocationExtractor {
	return &LocationExtractor{client: client}
}

// Extract returns the canonical location the model names for the item, or
// false when the model is unavailable or its answer does not resolve.
func (l *LocationExtractor) Extract(ctx context.Context, title, summary string) (models.Location, bool) {
	var raw json.RawMessage
	req := Request{
		System:      locationSystemPrompt,
		User:        "Title: " + title + "\n\nSummary: " + summary + "\n\nReturn JSON only.",
		Temperature: 0.2,
	}
	if err := complete(ctx, l.client, req, &raw); err != nil {
		logrus.Debugf("LLM location unavailable for %q: %v", title, err)
		return models.Location{}, false
	}

	guess, ok := decodeGuess(raw)
	if !ok {
		return models.Location{}, false
	}
	return location.NormalizeLocation(deref(guess.State), deref(guess.District))
}

// decodeGuess accepts a single object or an array whose first element is one.
func decodeGuess(raw json.RawMessage) (locationGuess, bool) {
	var guess locationGuess
	if err := json.Unmarshal(raw, &guess); err == nil {
		return guess, true
	}
	var list []locationGuess
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], true
	}
	return locationGuess{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
