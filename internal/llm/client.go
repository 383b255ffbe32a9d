// Package llm wraps the chat-completion model used to classify, locate and
// summarize mentions. Every helper treats a model failure as "no answer".
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/healthshield/mentions-bot/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
)

// Request is a single system + user exchange
type Request struct {
	System      string
	User        string
	Temperature float32
}

// Client returns the raw text of the model's reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenRouterClient talks to an OpenAI-compatible chat completions endpoint
type OpenRouterClient struct {
	client *openai.Client
	model  string
}

// NewOpenRouterClient creates a client. An empty apiKey is a configuration error.
func NewOpenRouterClient(apiKey, baseURL, model string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENROUTER_API_KEY is not set", models.ErrConfiguration)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends one chat completion and returns the first choice's content.
func (c *OpenRouterClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return content, nil
}

// DecodeResponse strips one optional leading code fence (with an optional
// "json" tag) and unmarshals the remainder into dst. It reports false on
// any failure and leaves dst in an unspecified state.
func DecodeResponse(text string, dst interface{}) bool {
	raw := strings.TrimSpace(text)
	if strings.HasPrefix(raw, "```") {
		raw = strings.Trim(raw, "` \n\r\t")
		if strings.HasPrefix(strings.ToLower(raw), "json") {
			raw = strings.TrimSpace(raw[4:])
		}
	}
	if raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// complete runs req against client and decodes the reply into dst.
func complete(ctx context.Context, client Client, req Request, dst interface{}) error {
	if client == nil {
		return fmt.Errorf("%w: language model is not configured", models.ErrConfiguration)
	}
	text, err := client.Complete(ctx, req)
	if err != nil {
		return err
	}
	if !DecodeResponse(text, dst) {
		return fmt.Errorf("unparseable model response: %.120q", text)
	}
	return nil
}

// Shorten collapses whitespace and truncates text to at most width
// characters at a word boundary, ending with " ..." when cut.
func Shorten(text string, width int) string {
	const placeholder = " ..."
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	if len([]rune(joined)) <= width {
		return joined
	}

	var b strings.Builder
	budget := width - len(placeholder)
	for _, w := range words {
		n := len([]rune(w))
		if b.Len() > 0 {
			n++
		}
		if len([]rune(b.String()))+n > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		return strings.TrimSpace(placeholder)
	}
	return b.String() + placeholder
}
