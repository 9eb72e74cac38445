package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PFDClassifier/internal/config"
	"PFDClassifier/internal/ports"
	"PFDClassifier/internal/retry"
)

const defaultTimeout = 120 * time.Second

// ChatGPTClient implements ports.ChatCompleter backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.OpenAIConfig, httpClient *http.Client) *ChatGPTClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ChatGPTClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Complete posts a non-streaming chat completion request.
func (c *ChatGPTClient) Complete(ctx context.Context, chatReq ports.ChatRequest) (ports.ChatResponse, error) {
	if c == nil {
		return ports.ChatResponse{}, retry.Permanent(fmt.Errorf("chatgpt client is nil"))
	}
	if c.apiKey == "" || c.endpoint == "" || chatReq.Model == "" {
		return ports.ChatResponse{}, retry.Permanent(fmt.Errorf("chatgpt client misconfigured"))
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return ports.ChatResponse{}, retry.Permanent(fmt.Errorf("marshal chatgpt payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ChatResponse{}, retry.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ports.ChatResponse{}, newAPIError(resp.StatusCode, payload)
	}

	var out ports.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.ChatResponse{}, fmt.Errorf("decode completion: %w", err)
	}

	return out, nil
}

// APIError is a non-2xx reply from the completion endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

var _ retry.Describer = (*APIError)(nil)

func newAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
		if envelope.Error.Code != nil {
			apiErr.Code = fmt.Sprint(envelope.Error.Code)
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(payload))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("chatgpt error %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("chatgpt error %d: %s", e.StatusCode, e.Message)
}

// APIStatus returns the HTTP status code.
func (e *APIError) APIStatus() int { return e.StatusCode }

// APIKind returns the error type reported by the API, falling back to the code.
func (e *APIError) APIKind() string {
	if e.Type != "" {
		return e.Type
	}
	return e.Code
}

// APIMessage returns the human-readable message.
func (e *APIError) APIMessage() string { return e.Message }
