package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

const healthSystemPrompt = `You are a strict binary classifier. Given a news item's title and summary, decide if it is HEALTH-RELATED (public health, diseases, outbreaks, vaccines, hospitals, environment affecting health, etc.) in Malaysia or generally relevant to Malaysian public health.
Respond with STRICT JSON: {"is_health": true|false} and nothing else.`

const batchSystemPrompt = "You are a strict binary classifier. For each entry in the provided JSON array of {title, summary}," +
	" decide if it is HEALTH-RELATED in Malaysia or relevant to Malaysian public health." +
	" Respond ONLY with a JSON array of booleans, same order as input (e.g., [true,false,...])."

// Candidate is one item submitted for classification
type Candidate struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Classifier decides whether items are about Malaysian public health.
// Undecidable items count as relevant.
type Classifier struct {
	client Client
}

// NewClassifier creates a classifier. A nil client classifies everything as relevant.
func NewClassifier(client Client) *Classifier {
	return &Classifier{client: client}
}

// Classify reports whether one item is health related. decided is false when
// the model gave no usable answer, in which case relevant is true.
func (c *Classifier) Classify(ctx context.Context, title, summary string) (relevant bool, decided bool) {
	var out struct {
		IsHealth interface{} `json:"is_health"`
	}
	req := Request{
		System:      healthSystemPrompt,
		User:        "Title: " + title + "\n\nSummary: " + summary + "\n\nAnswer as strict JSON only.",
		Temperature: 0.0,
	}
	if err := complete(ctx, c.client, req, &out); err != nil {
		logrus.Debugf("Classification unavailable for %q: %v", title, err)
		return true, false
	}

	switch v := out.IsHealth.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y":
			return true, true
		default:
			return false, true
		}
	}
	return true, false
}

// ClassifyMany classifies items in one request. The result always has one
// entry per item; any failure or a reply of the wrong shape or length
// yields all true.
func (c *Classifier) ClassifyMany(ctx context.Context, items []Candidate) []bool {
	fallback := make([]bool, len(items))
	for i := range fallback {
		fallback[i] = true
	}
	if len(items) == 0 {
		return fallback
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fallback
	}

	var out []*bool
	req := Request{System: batchSystemPrompt, User: string(payload), Temperature: 0.0}
	if err := complete(ctx, c.client, req, &out); err != nil {
		logrus.Debugf("Batch classification unavailable: %v", err)
		return fallback
	}
	if len(out) != len(items) {
		logrus.Warnf("Batch classification returned %d answers for %d items, keeping all", len(out), len(items))
		return fallback
	}

	verdicts := make([]bool, len(out))
	for i, v := range out {
		if v == nil {
			logrus.Warnf("Batch classification answer %d is null, keeping all", i)
			return fallback
		}
		verdicts[i] = *v
	}
	return verdicts
}
