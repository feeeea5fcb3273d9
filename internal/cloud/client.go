// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

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

	"golang.org/x/time/rate"

	"github.com/jeranaias/rigchat/internal/backend"
)

// Configuration constants for OpenRouter API.
const (
	// DefaultOpenRouterURL is the base URL for OpenRouter API.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024
)

// providerPrefixes maps catalog providers to OpenRouter vendor prefixes.
var providerPrefixes = map[string]string{
	"openai":    "openai",
	"anthropic": "anthropic",
	"google":    "google",
	"deepseek":  "deepseek",
	"mistral":   "mistralai",
	"meta":      "meta-llama",
}

// Error variables for common OpenRouter errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("OpenRouter API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// OpenRouterError represents an error from the OpenRouter API.
type OpenRouterError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *OpenRouterError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("OpenRouter error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("OpenRouter error (HTTP %d): %s", e.Status, e.Message)
}

// ChatRequest represents a request to the chat completions endpoint.
type ChatRequest struct {
	Model    string            `json:"model"`
	Messages []backend.Message `json:"messages"`
	Stream   bool              `json:"stream"`
}

// apiErrorResponse represents an error response from the API.
type apiErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// OpenRouterClient is a client for communicating with the OpenRouter API.
//
// The client is safe for concurrent use; the model travels with each
// request rather than living on the client.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	siteName   string
}

// NewOpenRouterClient creates a new OpenRouter client with the given API key.
//
// If the API key is empty the client is still created, but Chat and Ping
// fail with ErrNotConfigured.
func NewOpenRouterClient(apiKey string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultOpenRouterURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
		maxRetries: DefaultMaxRetries,
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func (c *OpenRouterClient) WithBaseURL(url string) *OpenRouterClient {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

// WithTimeout sets the HTTP timeout for requests.
func (c *OpenRouterClient) WithTimeout(timeout time.Duration) *OpenRouterClient {
	c.httpClient = &http.Client{Timeout: timeout}
	return c
}

// WithMaxRetries sets the maximum number of attempts for transient errors.
func (c *OpenRouterClient) WithMaxRetries(maxRetries int) *OpenRouterClient {
	if maxRetries < 1 {
		maxRetries = 1
	}
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit sets the client-side request rate (requests per second).
func (c *OpenRouterClient) WithRateLimit(perSecond float64, burst int) *OpenRouterClient {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// WithSiteName sets the X-Title header shown in the OpenRouter dashboard.
func (c *OpenRouterClient) WithSiteName(name string) *OpenRouterClient {
	c.siteName = name
	return c
}

// IsConfigured returns true if an API key is set.
func (c *OpenRouterClient) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns the key with everything but the prefix and last
// four characters hidden.
func (c *OpenRouterClient) APIKeyMasked() string {
	if len(c.apiKey) <= 12 {
		return strings.Repeat("*", len(c.apiKey))
	}
	return c.apiKey[:6] + "..." + c.apiKey[len(c.apiKey)-4:]
}

// QualifyModel turns a catalog id into an OpenRouter model id. Ids that
// already carry a vendor prefix pass through unchanged.
func QualifyModel(id, provider string) string {
	if strings.Contains(id, "/") {
		return id
	}
	if prefix, ok := providerPrefixes[strings.ToLower(provider)]; ok {
		return prefix + "/" + id
	}
	return id
}

// =============================================================================
// CHAT
// =============================================================================

// Chat performs a chat completion request and returns the raw JSON reply.
// Rate limiting and server errors are retried with exponential backoff.
func (c *OpenRouterClient) Chat(ctx context.Context, msgs []backend.Message, opts backend.Options) (backend.Reply, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(ChatRequest{
		Model:    QualifyModel(opts.Model, opts.Provider),
		Messages: msgs,
		Stream:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		data, err := c.do(ctx, http.MethodPost, "/chat/completions", body)
		if err == nil {
			return backend.Reply(data), nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Ping verifies the API key against the key info endpoint.
func (c *OpenRouterClient) Ping(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	_, err := c.do(ctx, http.MethodGet, "/key", nil)
	return err
}

// do performs one rate-limited request and returns the response body.
func (c *OpenRouterClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}
	return data, nil
}

// setHeaders sets the required headers for OpenRouter API requests.
func (c *OpenRouterClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "rigchat/0.1.0")
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

// readResponse reads the response body with size limits.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var sentinel error
	switch statusCode {
	case http.StatusUnauthorized:
		sentinel = ErrAuthFailed
	case http.StatusPaymentRequired:
		sentinel = ErrInsufficientCredits
	case http.StatusNotFound:
		sentinel = ErrModelNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, apiErr.Error.Message)
		}
		return &OpenRouterError{
			Code:    strings.Trim(string(apiErr.Error.Code), `"`),
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}
	}

	if sentinel != nil {
		return sentinel
	}
	return &OpenRouterError{Message: string(body), Status: statusCode}
}

// isRetryable reports whether an error should trigger another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var orErr *OpenRouterError
	if errors.As(err, &orErr) {
		return orErr.Status >= 500 && orErr.Status < 600
	}
	return false
}

// calculateBackoff returns the delay to wait before the next attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
