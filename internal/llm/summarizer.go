package llm

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

const summarySystemPrompt = "You are a concise summarizer. For each object in the JSON array of {title, text}," +
	" produce ONE neutral, factual sentence (<= 30 words) summarizing the main health-related point." +
	" Respond ONLY with a JSON array of strings in the same order."

// SummaryInput is one article to summarize
type SummaryInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Summarizer writes one-sentence summaries in batches
type Summarizer struct {
	client Client
}

func NewSummarizer(client Client) *Summarizer {
	return &Summarizer{client: client}
}

// SummarizeMany returns one summary per input, in order. Entries the model
// did not produce are "".
func (s *Summarizer) SummarizeMany(ctx context.Context, items []SummaryInput) []string {
	out := make([]string, len(items))
	if len(items) == 0 {
		return out
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return out
	}

	var summaries []*string
	req := Request{System: summarySystemPrompt, User: string(payload), Temperature: 0.2}
	if err := complete(ctx, s.client, req, &summaries); err != nil {
		logrus.Debugf("Batch summary unavailable: %v", err)
		return out
	}
	for i := range out {
		if i < len(summaries) && summaries[i] != nil {
			out[i] = *summaries[i]
		}
	}
	return out
}
