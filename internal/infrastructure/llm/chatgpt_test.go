package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PFDClassifier/internal/config"
	"PFDClassifier/internal/ports"
)

func TestChatGPTClientComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ports.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4-turbo", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "YES"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 1, "total_tokens": 121}
		}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{Endpoint: server.URL, APIKey: "sk-test"}, server.Client())

	resp, err := client.Complete(context.Background(), ports.ChatRequest{
		Model: "gpt-4-turbo",
		Messages: []ports.Message{
			{Role: "system", Content: "classify"},
			{Role: "user", Content: "report"},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "YES", resp.Choices[0].Message.Content)
	assert.Equal(t, 121, resp.Usage.TotalTokens)
}

func TestChatGPTClientAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{Endpoint: server.URL, APIKey: "sk-test"}, server.Client())

	_, err := client.Complete(context.Background(), ports.ChatRequest{Model: "gpt-4-turbo"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.APIStatus())
	assert.Equal(t, "requests", apiErr.APIKind())
	assert.Equal(t, "rate_limit_exceeded", apiErr.Code)
	assert.Equal(t, "Rate limit reached", apiErr.APIMessage())
}

func TestChatGPTClientPlainErrorBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable\n"))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{Endpoint: server.URL, APIKey: "sk-test"}, server.Client())

	_, err := client.Complete(context.Background(), ports.ChatRequest{Model: "gpt-4-turbo"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
	assert.Contains(t, err.Error(), "502")
}

func TestChatGPTClientMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.OpenAIConfig{Endpoint: "http://localhost"}, nil)

	_, err := client.Complete(context.Background(), ports.ChatRequest{Model: "gpt-4-turbo"})
	assert.ErrorContains(t, err, "misconfigured")
}
