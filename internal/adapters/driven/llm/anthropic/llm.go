// Package anthropic provides an LLM service adapter using Anthropic API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/llm/stream"
	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	// AnthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

const providerName = "anthropic"

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout bounds a whole completion, and the wait for the first
	// response headers of a stream (default: 120s).
	Timeout time.Duration

	// Retry bounds retries of a request before any output is read.
	Retry retry.Policy
}

// LLMService provides LLM operations using Anthropic API.
type LLMService struct {
	client  *http.Client
	timeout time.Duration
	baseURL string
	apiKey  string
	model   string
	retry   retry.Policy
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string    `json:"stop_reason"`
	Error      *apiError `json:"error,omitempty"`
}

// streamEvent is the payload of one server-sent event.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigError{Field: "llm.api_key", Err: errors.New("anthropic: API key is required")}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  stream.NewHTTPClient(cfg.Timeout),
		timeout: cfg.Timeout,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		retry:   cfg.Retry,
	}, nil
}

// Complete returns the full response for the conversation.
func (s *LLMService) Complete(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	ctx, cancel := stream.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.send(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}
	return result.String(), nil
}

// Stream starts a streamed response.
func (s *LLMService) Stream(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.Stream, error) {
	resp, err := s.send(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}
	return stream.NewReader(resp.Body, parseEvent), nil
}

func parseEvent(line []byte) (string, bool, error) {
	payload, ok := stream.SSEData(line)
	if !ok {
		return "", false, nil
	}

	var event streamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", false, fmt.Errorf("decode stream event: %w", err)
	}

	switch event.Type {
	case "content_block_delta":
		if event.Delta.Type == "text_delta" {
			return event.Delta.Text, false, nil
		}
	case "message_stop":
		return "", true, nil
	case "error":
		if event.Error != nil {
			return "", false, fmt.Errorf("anthropic error: %s", event.Error.Message)
		}
		return "", false, errors.New("anthropic: stream error")
	}
	return "", false, nil
}

// send posts a messages request and returns the response once a 200
// status has been received. System messages move to the system field.
func (s *LLMService) send(
	ctx context.Context,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
	streaming bool,
) (*http.Response, error) {
	var systemParts []string
	anthropicMessages := make([]messagesMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == string(domain.RoleSystem) {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		anthropicMessages = append(anthropicMessages, messagesMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:     s.model,
		Messages:  anthropicMessages,
		MaxTokens: maxTokens,
		System:    strings.Join(systemParts, "\n\n"),
		Stream:    streaming,
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp *http.Response
	err = retry.Do(ctx, s.retry, "anthropic messages", func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			s.baseURL+"/v1/messages",
			bytes.NewReader(jsonBody),
		)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", s.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		r, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		if r.StatusCode != http.StatusOK {
			defer r.Body.Close()
			body, _ := io.ReadAll(r.Body)
			msg := string(body)
			var errResp messagesResponse
			if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
				msg = errResp.Error.Message
			}
			return &retry.StatusError{Provider: providerName, StatusCode: r.StatusCode, Message: msg}
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	ctx, cancel := stream.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &retry.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
