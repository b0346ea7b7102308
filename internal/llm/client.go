// Package llm is the external code provider: it asks a remote
// OpenAI-compatible chat-completions API (Groq by default) to generate
// analysis code for prompts the deterministic matcher cannot handle.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Defaults for the Groq chat completions API.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultTimeout = 60 * time.Second
)

// ErrSentinel is the fixed prefix marking a provider-side failure
// surfaced inside response content. It must never reach the sandbox.
const ErrSentinel = "[LLM-error]"

// systemPrompt pins the response format: code only, fenced, using the
// names bound inside the sandbox.
const systemPrompt = "You are a helpful data analyst. " +
	"You MUST respond with Starlark code only, inside a ```starlark ... ``` block. " +
	"The dataset is named `df`. Use the `tbl` module for table operations, " +
	"`num` for numeric arrays, and `plot` for charts. " +
	"Set a variable named `result` to return a table or text. " +
	"Do not print explanations; only code."

// Provider generates analysis code from a natural-language prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Config configures the HTTP client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client. The API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is not set: set it in the environment (see llm.api_key_env)")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Name returns the provider name for display.
func (c *Client) Name() string {
	return "groq:" + c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the analysis prompt and returns the model's raw
// response content. Transport and API failures come back as
// *ProviderError so callers can show the raw output.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	userPrompt := "User wants the following analysis on the dataset `df`:\n" +
		prompt +
		"\nReturn only Starlark code inside a ```starlark ... ``` block."

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("calling code provider", "model", c.model)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Reason: "request failed", Raw: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ProviderError{Reason: "failed to read response", Raw: err.Error()}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ProviderError{Reason: "malformed response", Raw: string(raw)}
	}
	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("API returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			reason = parsed.Error.Message
		}
		return "", &ProviderError{Reason: reason, Raw: string(raw)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Reason: "response has no choices", Raw: string(raw)}
	}

	content := parsed.Choices[0].Message.Content
	if strings.HasPrefix(strings.TrimSpace(content), ErrSentinel) {
		return "", &ProviderError{Reason: "provider reported an error", Raw: content}
	}
	return content, nil
}
