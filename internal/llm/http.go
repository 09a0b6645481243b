// ABOUTME: HTTP chat-completions client for OpenAI-compatible APIs
// ABOUTME: Implements the Client interface against Groq/OpenAI style /chat/completions endpoints

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults match the Groq-hosted model the service ships with.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "openai/gpt-oss-20b"
	DefaultTimeout = 60 * time.Second
)

// Config holds the settings for an HTTPClient.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	client      *resty.Client
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewHTTPClient creates a completion client. Zero-value config fields fall
// back to the package defaults; the API key is passed through as-is.
func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
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

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetAuthToken(cfg.APIKey)

	return &HTTPClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "llm"),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends the message sequence and returns the model's reply text.
// One request, one attempt: a failure is returned to the caller unretried.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("chat completions API error %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decoding chat completions response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completions response contained no choices")
	}

	c.logger.Debug("completion received",
		"model", c.model,
		"messages", len(messages),
		"elapsed", time.Since(start))

	return parsed.Choices[0].Message.Content, nil
}

// Ensure HTTPClient implements Client interface
var _ Client = (*HTTPClient)(nil)
