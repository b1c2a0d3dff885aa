// Package modelclient mediates all generation calls made by the pipeline:
// multi-model primary attempts, cross-provider fallback, pre-flight token
// budget enforcement, and a structured-output mode with bounded retry.
// Grounded on legal-gateway/worker.go's model-list fallback loop and
// original_source's core/llm_client.py (budget check, backtick-fence
// stripping, retry shape). The Python original never actually switches
// providers on model-list exhaustion despite its config shape implying it
// could; this client adds that cross-provider fallback per spec.md §4.6/§9.
package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"legalrisk/internal/config"
	"legalrisk/internal/metrics"
	"legalrisk/internal/tracing"
)

// ModelType selects which per-type model list a call draws from.
type ModelType string

const (
	ModelFast       ModelType = "fast"
	ModelSmart      ModelType = "smart"
	ModelStructured ModelType = "structured"
)

// Message is one OpenAI-compatible chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the resilient Model Client.
type Client struct {
	cfg        config.ModelClientConfig
	httpClient *http.Client
	tracer     tracing.Tracer
	logger     *zap.Logger

	callCount atomic.Int64
}

// New builds a Model Client from configuration.
func New(cfg config.ModelClientConfig, tracer tracing.Tracer, logger *zap.Logger) *Client {
	if tracer == nil {
		tracer = tracing.NoOp
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		tracer:     tracer,
		logger:     logger,
	}
}

// Stats is the call-accounting surface spec.md §4.6 requires.
type Stats struct {
	TotalCalls int64
}

func (c *Client) Stats() Stats { return Stats{TotalCalls: c.callCount.Load()} }

func estimatePromptTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 3
	}
	return total
}

// checkBudget enforces the pre-flight token budget check before any network
// call is attempted.
func (c *Client) checkBudget(messages []Message, maxTokens int) error {
	estimated := estimatePromptTokens(messages) + maxTokens
	if estimated > c.cfg.AffordableTokens {
		return &InsufficientCreditsError{
			Reason: fmt.Sprintf("request requires ~%d tokens, exceeds limit of %d", estimated, c.cfg.AffordableTokens),
		}
	}
	return nil
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func isPaymentError(err error, status int, body string) bool {
	lower := strings.ToLower(body)
	return status == http.StatusPaymentRequired ||
		strings.Contains(lower, "payment required") ||
		strings.Contains(lower, "insufficient")
}

func isRateLimitError(status int, body string) bool {
	return status == http.StatusTooManyRequests || strings.Contains(strings.ToLower(body), "rate limit")
}

// callModel performs a single HTTP chat-completions call against one
// provider/model pair.
func (c *Client) callModel(ctx context.Context, provider config.ProviderConfig, model string, messages []Message, temperature float64, maxTokens int) (string, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+provider.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "transient").Inc()
		return "", &TransientModelError{Model: model, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if isPaymentError(nil, resp.StatusCode, string(body)) {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "insufficient_credits").Inc()
		return "", &InsufficientCreditsError{Reason: fmt.Sprintf("%s: %s", model, string(body))}
	}
	if isRateLimitError(resp.StatusCode, string(body)) {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "rate_limited").Inc()
		return "", &TransientModelError{Model: model, Err: fmt.Errorf("rate limited: %s", string(body)), RateLimited: true}
	}
	if resp.StatusCode >= 500 {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "transient").Inc()
		return "", &TransientModelError{Model: model, Err: fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "transient").Inc()
		return "", &TransientModelError{Model: model, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "transient").Inc()
		return "", &TransientModelError{Model: model, Err: fmt.Errorf("invalid response json: %w", err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "transient").Inc()
		return "", &TransientModelError{Model: model, Err: fmt.Errorf("empty response from model")}
	}

	c.callCount.Add(1)
	metrics.ModelClientCallsTotal.WithLabelValues(provider.Name, "success").Inc()
	return parsed.Choices[0].Message.Content, nil
}

// Complete tries the primary provider's model list in order, then the
// fallback provider's list, returning the first successful completion.
// InsufficientCreditsError aborts immediately without further attempts.
func (c *Client) Complete(ctx context.Context, messages []Message, modelType ModelType, temperature float64, maxTokens int) (string, error) {
	ctx, span := c.tracer.Start(ctx, "LLM Call")
	defer span.End()

	if err := c.checkBudget(messages, maxTokens); err != nil {
		span.RecordError(err)
		return "", err
	}

	providers := []config.ProviderConfig{c.cfg.Primary}
	if c.cfg.FallbackEnabled {
		providers = append(providers, c.cfg.Fallback)
	}

	var lastErr error
	for _, provider := range providers {
		models := provider.Models[string(modelType)]
		if len(models) == 0 {
			models = provider.Models[string(ModelFast)]
		}
		for _, model := range models {
			if c.logger != nil {
				c.logger.Debug("trying model", zap.String("provider", provider.Name), zap.String("model", model))
			}
			content, err := c.callModel(ctx, provider, model, messages, temperature, maxTokens)
			if err == nil {
				return content, nil
			}

			var credErr *InsufficientCreditsError
			if asInsufficientCredits(err, &credErr) {
				span.RecordError(err)
				return "", err
			}

			var transientErr *TransientModelError
			if asTransient(err, &transientErr) && transientErr.RateLimited {
				select {
				case <-time.After(c.cfg.RetryDelay):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			lastErr = err
			if c.logger != nil {
				c.logger.Warn("model failed", zap.String("model", model), zap.Error(err))
			}
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		return "", fmt.Errorf("%w: %v", ErrAllModelsFailed, lastErr)
	}
	return "", ErrAllModelsFailed
}

func asInsufficientCredits(err error, target **InsufficientCreditsError) bool {
	if e, ok := err.(*InsufficientCreditsError); ok {
		*target = e
		return true
	}
	return false
}

func asTransient(err error, target **TransientModelError) bool {
	if e, ok := err.(*TransientModelError); ok {
		*target = e
		return true
	}
	return false
}
