// Package openai implements harvest.Backend for OpenAI-compatible chat
// completion APIs such as OpenAI, Groq or a local server.
package openai

import (
	"context"
	"strings"

	"github.com/fwojciec/harvest"
	openai "github.com/sashabaranov/go-openai"
)

// Generation settings for extraction calls.
const (
	DefaultModel    = "gpt-4o-mini"
	Temperature     = 0.1
	MaxOutputTokens = 2000
)

// jsonObjectNote is appended to the system prompt because JSON mode only
// allows object replies.
const jsonObjectNote = "Wrap the array in an object: {\"" + harvest.RecordsKey + "\": [...]}."

// Client is the part of *openai.Client the backend uses.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Ensure Backend implements harvest.Backend at compile time.
var _ harvest.Backend = (*Backend)(nil)

// Backend implements harvest.Backend with a chat completion model in JSON mode.
type Backend struct {
	client Client
	Model  string
}

// NewBackend creates a new Backend.
func NewBackend(client Client, model string) *Backend {
	if model == "" {
		model = DefaultModel
	}
	return &Backend{client: client, Model: model}
}

// NewClient returns a client for apiKey. An empty baseURL selects the
// OpenAI API; otherwise baseURL points at any compatible endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg)
}

// Extract asks the model for the records in text. A reply that is not
// valid JSON is an error.
func (b *Backend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error) {
	if text == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "text required")
	}

	resp, err := b.client.CreateChatCompletion(ctx, BuildRequest(b.Model, text, schema, instruction))
	if err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, harvest.Errorf(harvest.EINTERNAL, "chat completion returned no choices")
	}

	return harvest.ParseRecords(resp.Choices[0].Message.Content)
}

// BuildRequest returns the chat completion request for one chunk.
func BuildRequest(model, text string, schema *harvest.Schema, instruction string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: harvest.BuildSystemPrompt(schema, instruction) + jsonObjectNote},
			{Role: openai.ChatMessageRoleUser, Content: harvest.BuildUserPrompt(text)},
		},
		Temperature: Temperature,
		MaxTokens:   MaxOutputTokens,
		N:           1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}
