// Package gemini implements the text-generation provider on top of the
// Gemini generateContent REST endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/circuitbreaker"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

// ClientConfig contains configuration for the Gemini client.
type ClientConfig struct {
	BaseURL string

	// APIKey is sent as x-goog-api-key. Empty means the provider is unavailable.
	APIKey string

	Model string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// MaxAttempts includes the first call.
	MaxAttempts int

	// RateLimit throttles outbound calls. A zero RequestsPerMinute disables it.
	RateLimit RateLimiterConfig

	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:     DefaultBaseURL,
		APIKey:      apiKey,
		Model:       DefaultModel,
		Timeout:     60 * time.Second,
		MaxAttempts: 2,
		RateLimit:   DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client implements generation.Provider.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *logger.Logger
	retrier        *retry.Retrier
	circuitBreaker *circuitbreaker.CircuitBreaker
	limiter        *RateLimiter
}

var _ generation.Provider = (*Client)(nil)

// NewClient creates a Gemini client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	log := config.Logger.With(logger.Component("gemini"))

	breaker := circuitbreaker.GeminiBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	var limiter *RateLimiter
	if config.RateLimit.RequestsPerMinute > 0 {
		limiter = NewRateLimiter(config.RateLimit)
	}

	return &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		logger:         log,
		retrier:        retry.GeminiRetrier(config.MaxAttempts),
		circuitBreaker: breaker,
		limiter:        limiter,
	}
}

// Name implements generation.Provider.
func (c *Client) Name() string {
	return "gemini:" + c.config.Model
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.config.APIKey) != ""
}

// Generate implements generation.Provider.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", shared.ErrProviderUnavailable
	}

	start := time.Now()
	text, err := circuitbreaker.ExecuteWithData(ctx, c.circuitBreaker, func(ctx context.Context) (string, error) {
		return retry.DoWithData(ctx, c.retrier, func(ctx context.Context) (string, error) {
			return c.generateOnce(ctx, prompt)
		})
	})
	if err != nil {
		c.logger.Warn("generation failed", logger.Err(err), logger.Latency(time.Since(start)))
		if errors.Is(err, shared.ErrEmptyGeneration) {
			return "", err
		}
		kind := shared.ErrExternalService
		switch {
		case circuitbreaker.IsRejected(err):
			kind = shared.ErrServiceUnavailable
		case errors.Is(err, shared.ErrRateLimited):
			kind = shared.ErrRateLimited
		}
		return "", shared.WrapError("generation", "Generate", kind, "gemini request failed", err)
	}

	c.logger.Debug("generation completed", logger.Latency(time.Since(start)), logger.Int("chars", len(text)))
	return text, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ══════════════════════════════════════════════════════════════════════════════

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// APIError is the error body returned by the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: http %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: http %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the call may succeed on retry.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (r generateResponse) text() string {
	var b strings.Builder
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (c *Client) endpoint() string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/models/" + url.PathEscape(c.config.Model) + ":generateContent"
}

// generateOnce performs one HTTP call. Transient failures come back wrapped
// with retry.Retryable.
func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Allow(ctx); err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.Status = envelope.Error.Status
		}
		if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
			c.limiter.RecordRateLimitHit(retryAfter(resp.Header.Get("Retry-After")))
		}
		if apiErr.Temporary() {
			return "", retry.Retryable(apiErr)
		}
		return "", apiErr
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	text := decoded.text()
	if text == "" {
		return "", shared.ErrEmptyGeneration
	}
	return text, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
