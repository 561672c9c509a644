// Package llm provides the completion client used for report narrative
// generation: a rate-limited HTTP client, a circuit-breaker wrapper, a two-tier
// completion cache, and the per-section prompt builders.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ot-assessment-server/internal/domain"
)

// CompletionRequest is one narrative completion call.
type CompletionRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"maxTokens"`
}

// CompletionResult is the text returned by the completion endpoint.
type CompletionResult struct {
	Text string `json:"text"`
}

// Completer issues a single completion call. Implementations must be safe for
// concurrent use.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// HTTPClient talks to the completion endpoint over HTTP.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewHTTPClient creates a completion client from configuration. RateLimit is
// requests per second; zero disables client-side limiting.
func NewHTTPClient(config domain.LLMConfig, logger *logrus.Logger) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)
	}

	return &HTTPClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

type completionPayload struct {
	Model     string `json:"model,omitempty"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// Complete posts the prompt to the completion endpoint and decodes the text
// response. The call waits on the rate limiter first and honors context
// cancellation throughout.
func (c *HTTPClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := json.Marshal(completionPayload{
		Model:     c.model,
		Prompt:    req.Prompt,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(raw),
		}).Warn("Completion endpoint returned non-OK status")
		return nil, fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var result CompletionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"prompt_length": len(req.Prompt),
		"text_length":   len(result.Text),
	}).Debug("Completion call succeeded")

	return &result, nil
}
