package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

const (
	defaultTimeout = 10 * time.Minute
	// error bodies beyond this are truncated before being reported
	maxErrorBody = 4 * 1024
)

// Config describes one chat-completion endpoint.
type Config struct {
	Provider    string        // "openai" or "azure"
	BaseURL     string        // e.g. "https://api.openai.com" or the Azure resource endpoint
	APIKey      string        // resolved key, never "env:..."
	Model       string        // model name (openai) or informational (azure)
	Deployment  string        // azure deployment name
	APIVersion  string        // azure api-version query parameter
	Temperature float64       // sampling temperature
	MaxTokens   int           // 0 = provider default
	Timeout     time.Duration // whole-request timeout; 0 = 10m
}

// Client sends single, synchronous chat-completion requests.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a client for cfg.
func New(cfg Config) (*Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
	case ProviderAzure:
		if cfg.Deployment == "" {
			return nil, fmt.Errorf("azure provider requires a deployment")
		}
		if cfg.APIVersion == "" {
			return nil, fmt.Errorf("azure provider requires an api version")
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ModelName returns the name reported for this client: the model for OpenAI,
// the deployment for Azure.
func (c *Client) ModelName() string {
	if c.cfg.Provider == ProviderAzure {
		return c.cfg.Deployment
	}
	return c.cfg.Model
}

// Complete sends prompt as a single user message and returns the first
// choice's content. Every failure is returned as *Error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temp := c.cfg.Temperature
	req := ChatRequest{
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: &temp,
	}
	// azure routes by deployment; the body carries no model
	if c.cfg.Provider == ProviderOpenAI {
		req.Model = c.cfg.Model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Kind: KindMalformed, Message: "marshal request", Err: err}
	}

	endpoint := c.endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	slog.Debug("chat completion request", "provider", c.cfg.Provider, "model", c.ModelName(), "prompt_bytes", len(prompt))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", statusError(resp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Message: "response has no choices"}
	}
	if chatResp.Usage != nil {
		slog.Debug("chat completion usage",
			"prompt_tokens", chatResp.Usage.PromptTokens,
			"completion_tokens", chatResp.Usage.CompletionTokens,
		)
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if c.cfg.Provider == ProviderAzure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base, url.PathEscape(c.cfg.Deployment), url.QueryEscape(c.cfg.APIVersion))
	}
	return base + "/v1/chat/completions"
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey == "" {
		return
	}
	if c.cfg.Provider == ProviderAzure {
		req.Header.Set("api-key", c.cfg.APIKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
}

// statusError builds an *Error from a >= 400 response, preferring the
// provider's error message over the raw body.
func statusError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if redacted, n := redactSecrets(msg); n > 0 {
		slog.Debug("redacted credentials from provider error", "count", n)
		msg = redacted
	}

	e := &Error{
		Kind:       kindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
	if e.Kind == KindRateLimit {
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return e
}
