package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Jafar090/CompliBot/internal/metrics"
)

var (
	// ErrUnavailable indicates the model server could not be reached or
	// timed out. The caller retries the turn; session state stays untouched.
	ErrUnavailable = errors.New("llm upstream unavailable")
	// ErrMalformed indicates the model server answered with something the
	// client could not decode.
	ErrMalformed = errors.New("llm malformed response")
	// ErrTranscription indicates the audio payload was unsupported or corrupt.
	ErrTranscription = errors.New("audio transcription failed")
)

// Client talks to a local OpenAI-compatible model server (LM Studio or
// similar): text completions plus audio transcription.
type Client struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	audioModel string
	maxTokens  int
	timeout    time.Duration
}

// Config holds LLM client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	AudioModel string
	MaxTokens  int
	Timeout    time.Duration
}

// New creates a completions client.
func New(cfg Config, logger *slog.Logger, metrics *metrics.Metrics) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:1234"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Client{
		logger:     logger.With("component", "llm"),
		metrics:    metrics,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		audioModel: cfg.AudioModel,
		maxTokens:  maxTokens,
		timeout:    timeout,
	}
}

// Turn is one prior utterance supplied as prompt context.
type Turn struct {
	Role    string
	Content string
}

type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete sends the system prompt plus recent history to the completions
// endpoint and returns the generated text.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []Turn) (string, error) {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n")
	for _, turn := range history {
		role := "Assistant"
		if turn.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, turn.Content)
	}
	sb.WriteString("Assistant: ")

	payload := completionRequest{
		Model:       c.model,
		Prompt:      sb.String(),
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		TopP:        0.9,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.LLMRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.metrics.LLMLatency.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.LLMRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.LLMRequests.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, snippet(raw))
	}

	var decoded completionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.metrics.LLMRequests.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: %v (snippet=%q)", ErrMalformed, err, snippet(raw))
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Text) == "" {
		c.metrics.LLMRequests.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: no completion text (snippet=%q)", ErrMalformed, snippet(raw))
	}

	c.metrics.LLMRequests.WithLabelValues("success").Inc()
	text := strings.TrimSpace(decoded.Choices[0].Text)
	c.logger.Debug("completion received", "chars", len(text))
	return text, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts audio bytes into text via the transcriptions endpoint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio payload empty", ErrTranscription)
	}
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if c.audioModel != "" {
		if err := writer.WriteField("model", c.audioModel); err != nil {
			return "", fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.TranscribeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.TranscribeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		c.metrics.TranscribeRequests.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: status=%d body=%s", ErrTranscription, resp.StatusCode, snippet(raw))
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.TranscribeRequests.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, snippet(raw))
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.metrics.TranscribeRequests.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: %v (snippet=%q)", ErrMalformed, err, snippet(raw))
	}

	c.metrics.TranscribeRequests.WithLabelValues("success").Inc()
	return strings.TrimSpace(decoded.Text), nil
}

func snippet(raw []byte) string {
	s := string(raw)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
