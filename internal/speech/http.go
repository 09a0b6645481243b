// ABOUTME: HTTP speech client for OpenAI-compatible audio APIs
// ABOUTME: Implements transcription (whisper) and synthesis (tts) over /audio endpoints

package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults match the OpenAI audio API the service ships with.
const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultSTTModel = "whisper-1"
	DefaultTTSModel = "tts-1"
	DefaultTTSVoice = "alloy"
	DefaultTimeout  = 120 * time.Second
)

// Config holds the settings for an HTTPClient.
type Config struct {
	BaseURL  string
	APIKey   string
	STTModel string
	TTSModel string
	TTSVoice string
	Timeout  time.Duration
}

// HTTPClient talks to an OpenAI-compatible audio API.
type HTTPClient struct {
	client   *resty.Client
	sttModel string
	ttsModel string
	ttsVoice string
	logger   *slog.Logger
}

// NewHTTPClient creates a speech client. Zero-value config fields fall back
// to the package defaults.
func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.STTModel == "" {
		cfg.STTModel = DefaultSTTModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = DefaultTTSModel
	}
	if cfg.TTSVoice == "" {
		cfg.TTSVoice = DefaultTTSVoice
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetAuthToken(cfg.APIKey)

	return &HTTPClient{
		client:   client,
		sttModel: cfg.STTModel,
		ttsModel: cfg.TTSModel,
		ttsVoice: cfg.TTSVoice,
		logger:   logger.With("component", "speech"),
	}
}

// Transcribe uploads audio as multipart form data and returns the plain-text
// transcript. The filename's extension tells the API the audio format.
func (c *HTTPClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, audio).
		SetFormData(map[string]string{
			"model":           c.sttModel,
			"response_format": "text",
		}).
		Post("/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("calling transcription: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("transcription API error %d: %s", resp.StatusCode(), resp.String())
	}

	transcript := strings.TrimSpace(resp.String())
	c.logger.Debug("transcription received",
		"model", c.sttModel,
		"chars", len(transcript),
		"elapsed", time.Since(start))

	return transcript, nil
}

type synthesizeRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize converts text to MP3 audio bytes.
func (c *HTTPClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := synthesizeRequest{
		Model:          c.ttsModel,
		Input:          text,
		Voice:          c.ttsVoice,
		ResponseFormat: "mp3",
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/audio/speech")
	if err != nil {
		return nil, fmt.Errorf("calling speech synthesis: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("speech synthesis API error %d: %s", resp.StatusCode(), resp.String())
	}

	audio := resp.Body()
	c.logger.Debug("synthesis received",
		"model", c.ttsModel,
		"voice", c.ttsVoice,
		"bytes", len(audio),
		"elapsed", time.Since(start))

	return audio, nil
}

// Ensure HTTPClient implements Client interface
var _ Client = (*HTTPClient)(nil)
