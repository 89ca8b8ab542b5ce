package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"medclarify/domain"
)

// Client is the Messages API client
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	retry      RetryPolicy
	logger     zerolog.Logger
	observer   Observer

	sleep func(context.Context, time.Duration) error
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom endpoint URL (for testing). Invalid URLs are
// ignored.
func WithBaseURL(endpoint string) ClientOption {
	return func(c *Client) {
		if validEndpoint(endpoint) {
			c.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryPolicy replaces the default retry policy
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithObserver registers a callback for request activity
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new Messages API client. A missing API key is a
// configuration error; nothing is sent without one.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("API key is required", nil)
	}

	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaults.APIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	c := &Client{
		cfg:      cfg,
		endpoint: DefaultAPIURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retry:  DefaultRetryPolicy(),
		logger: zerolog.Nop(),
		sleep:  sleepContext,
	}
	if cfg.BaseURL != "" {
		WithBaseURL(cfg.BaseURL)(c)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewClientFromEnv creates a client from LoadConfig
func NewClientFromEnv(opts ...ClientOption) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, opts...)
}

// Model returns the default model used for requests without one.
func (c *Client) Model() string {
	return c.cfg.Model
}

// MaxTokens returns the default response token limit.
func (c *Client) MaxTokens() int {
	return c.cfg.MaxTokens
}

// Send posts req to the Messages API. Rate limits and transport failures are
// retried according to the client's RetryPolicy; every other failure is
// returned at once. Errors are *domain.DomainError values, or the context
// error when ctx ends first.
func (c *Client) Send(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, domain.ConfigError("API key is required", nil)
	}

	body := *req
	if body.Model == "" {
		body.Model = c.cfg.Model
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = c.cfg.MaxTokens
	}

	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		start := time.Now()
		c.emit(Event{Kind: EventAttempt, Attempt: attempt})
		c.logger.Debug().
			Int("attempt", attempt).
			Str("model", body.Model).
			Int("bytes", len(payload)).
			Msg("sending request")

		resp, err := c.post(ctx, payload)
		if err == nil {
			c.emit(Event{Kind: EventResponse, Attempt: attempt, StatusCode: http.StatusOK, Elapsed: time.Since(start), Usage: resp.Usage})
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay, retry := c.retry.ShouldRetry(attempt, err)
		if !retry {
			c.logger.Error().Err(err).Int("attempt", attempt).Msg("request failed")
			c.emit(Event{Kind: EventFailure, Attempt: attempt, StatusCode: statusOf(err), Elapsed: time.Since(start), Message: err.Error()})
			return nil, err
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("retrying request")
		c.emit(Event{Kind: EventRetry, Attempt: attempt, StatusCode: statusOf(err), Delay: delay, Message: err.Error()})

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Ping sends a minimal request to verify the key and endpoint.
func (c *Client) Ping(ctx context.Context) (*MessageResponse, error) {
	return c.Send(ctx, &MessageRequest{
		MaxTokens: 100,
		Messages:  []Message{UserText("Hello")},
	})
}

// post performs a single attempt and classifies its failure.
func (c *Client) post(ctx context.Context, payload []byte) (*MessageResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", c.cfg.APIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NetworkError("network request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError("network error while reading response", err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("response received")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.RateLimitedError(resp.StatusCode, errorMessage(resp, respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ServiceError(resp.StatusCode, errorMessage(resp, respBody), nil)
	}

	var result MessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.ServiceError(resp.StatusCode, "failed to parse response", err)
	}

	return &result, nil
}

func (c *Client) emit(e Event) {
	if c.observer == nil {
		return
	}
	e.Time = time.Now()
	c.observer(e)
}

// errorMessage extracts error.message from an API error body, falling back
// to the status line.
func errorMessage(resp *http.Response, body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return "Claude API error: " + resp.Status
}

func statusOf(err error) int {
	if de, ok := err.(*domain.DomainError); ok {
		return de.StatusCode
	}
	return 0
}

func validEndpoint(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
