// Package ai wraps the Anthropic Messages API behind the single generation
// primitive the pipeline uses for titles, article bodies, continuations,
// coverage patches, rewrites, and metadata. All retry, circuit-breaker, and
// concurrency-limiting behavior lives here so call sites stay simple.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
)

// Model constants. Long-form body generation needs the stronger model;
// metadata and title generation run fine on the cheap one.
const (
	// ModelSonnet is the high-end model for long-form generation
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient model for short structured outputs
	ModelHaiku = "claude-3-5-haiku-20241022"
)

// GetDefaultModel returns the default model, checking SEOFORGE_MODEL first.
func GetDefaultModel() string {
	if model := os.Getenv("SEOFORGE_MODEL"); model != "" {
		return model
	}
	return ModelSonnet
}

// GetSimpleTaskModel returns the model for short structured outputs,
// checking SEOFORGE_MODEL_SIMPLE first.
func GetSimpleTaskModel() string {
	if model := os.Getenv("SEOFORGE_MODEL_SIMPLE"); model != "" {
		return model
	}
	return ModelHaiku
}

// Request describes one generation call.
type Request struct {
	Prompt      string        // user prompt (required)
	System      string        // system prompt; empty means none
	Temperature float64       // 0 means provider default
	MaxTokens   int           // 0 means 4096
	Model       string        // empty means the generator's default model
	Operation   string        // short label for logs ("title", "continuation", ...)
	Timeout     time.Duration // per-attempt override; 0 means the retry default
}

// Generator is the LLM client used by every pipeline phase.
type Generator struct {
	client         *anthropic.Client
	model          string
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
}

// Config holds generator configuration.
type Config struct {
	APIKey string // if empty, reads ANTHROPIC_API_KEY
	Model  string // default model (defaults to GetDefaultModel())
	Retry  RetryConfig
}

// NewGenerator creates a generator with retry, circuit breaker, and a
// concurrency cap on in-flight API calls.
func NewGenerator(cfg *Config) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var circuitBreaker *CircuitBreaker
	if retry.CircuitBreakerEnabled {
		circuitBreaker = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}

	var concurrencySem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		concurrencySem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	return &Generator{
		client:         &client,
		model:          model,
		retry:          retry,
		circuitBreaker: circuitBreaker,
		concurrencySem: concurrencySem,
	}, nil
}

// Generate executes one generation request and returns the response text.
// Retries with backoff on transient failures; fails fast when the circuit
// breaker is open.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("generation request has no prompt")
	}

	model := req.Model
	if model == "" {
		model = g.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	operation := req.Operation
	if operation == "" {
		operation = "generate"
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	startTime := time.Now()
	var response *anthropic.Message
	err := g.retryWithBackoff(ctx, operation, req.Timeout, func(attemptCtx context.Context) error {
		resp, apiErr := g.client.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generation call %s failed: %w", operation, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	fmt.Printf("AI %s call: input=%d tokens, output=%d tokens, duration=%v\n",
		operation, response.Usage.InputTokens, response.Usage.OutputTokens, time.Since(startTime))

	return text, nil
}

// HealthCheck reports whether the generator can currently serve calls.
func (g *Generator) HealthCheck() error {
	if g.circuitBreaker != nil {
		state, failures, _ := g.circuitBreaker.GetMetrics()
		if state == CircuitOpen {
			return fmt.Errorf("generator unavailable: %w (failures=%d, retry in %v)",
				ErrCircuitOpen, failures, g.retry.OpenTimeout)
		}
	}
	return nil
}
