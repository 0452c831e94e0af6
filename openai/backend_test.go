package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/harvest"
	harvestopenai "github.com/fwojciec/harvest/openai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient is a function-field Client.
type stubClient struct {
	CreateChatCompletionFn func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func (c *stubClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return c.CreateChatCompletionFn(ctx, req)
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	}
}

var eventSchema = &harvest.Schema{
	Name:   "event",
	Fields: []harvest.SchemaField{{Name: "title"}, {Name: "date"}},
}

func TestBackend_Extract(t *testing.T) {
	t.Parallel()

	t.Run("unwraps records object", func(t *testing.T) {
		t.Parallel()

		var got openai.ChatCompletionRequest
		client := &stubClient{
			CreateChatCompletionFn: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				got = req
				return reply(`{"records":[{"title":"Launch","date":"2024-05-01"}]}`), nil
			},
		}

		records, err := harvestopenai.NewBackend(client, "llama-3.1-8b-instant").Extract(context.Background(), "Launch on May 1.", eventSchema, "")

		require.NoError(t, err)
		assert.Equal(t, []harvest.Record{{"title": "Launch", "date": "2024-05-01"}}, records)
		assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	})

	t.Run("malformed reply is an error", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{
			CreateChatCompletionFn: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return reply("I could not find any events."), nil
			},
		}

		_, err := harvestopenai.NewBackend(client, "").Extract(context.Background(), "text", eventSchema, "")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("API failure is unavailable", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{
			CreateChatCompletionFn: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, errors.New("429 too many requests")
			},
		}

		_, err := harvestopenai.NewBackend(client, "").Extract(context.Background(), "text", nil, "")

		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
	})

	t.Run("no choices is an error", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{
			CreateChatCompletionFn: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, nil
			},
		}

		_, err := harvestopenai.NewBackend(client, "").Extract(context.Background(), "text", nil, "")

		assert.Equal(t, harvest.EINTERNAL, harvest.ErrorCode(err))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := harvestopenai.NewBackend(nil, "").Extract(context.Background(), "", nil, "")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	req := harvestopenai.BuildRequest("m", "page text", eventSchema, "Only future events.")

	assert.InDelta(t, harvestopenai.Temperature, req.Temperature, 0.001)
	assert.Equal(t, harvestopenai.MaxOutputTokens, req.MaxTokens)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "Only future events.")
	assert.Contains(t, req.Messages[0].Content, `{"records": [...]}`)
	assert.Contains(t, req.Messages[1].Content, "page text")
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply(`{"records":[{"content":"hello"}]}`))
	}))
	defer srv.Close()

	backend := harvestopenai.NewBackend(harvestopenai.NewClient("secret", srv.URL+"/v1/"), "")
	records, err := backend.Extract(context.Background(), "hello", nil, "")

	require.NoError(t, err)
	assert.Equal(t, []harvest.Record{{"content": "hello"}}, records)
}
