// Copyright 2025 Turkmen Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llm provides the client for the OpenAI-compatible completion and
// embedding endpoint. Completions are single-attempt and time-bounded; every
// transport-level problem is mapped into a CompletionResult rather than an
// error so the pipeline can always fall back to composed answers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// MaxEmbeddingRetries defines the maximum number of embedding retry attempts
	MaxEmbeddingRetries = 3
	// BaseRetryDelay defines the base delay for exponential backoff
	BaseRetryDelay = time.Second
	// DefaultCompletionTimeout bounds a single completion call
	DefaultCompletionTimeout = 30 * time.Second
)

// FailureKind classifies a failed completion call. Callers should branch on
// Failed only; the kind exists for logging.
type FailureKind string

const (
	// FailureTimeout indicates the completion call exceeded its deadline
	FailureTimeout FailureKind = "timeout"
	// FailureTransport indicates a network or client-level error
	FailureTransport FailureKind = "transport"
	// FailureStatus indicates a non-success HTTP status from the endpoint
	FailureStatus FailureKind = "status"
	// FailureMalformed indicates a response without a usable choices payload
	FailureMalformed FailureKind = "malformed"
)

// Message is one chat message in a completion request
type Message struct {
	Role    string
	Content string
}

// CompletionResult is the uniform outcome of a completion call
type CompletionResult struct {
	Text   string
	Failed bool
	Kind   FailureKind
}

// OK reports whether the completion produced usable text
func (r CompletionResult) OK() bool {
	return !r.Failed
}

// Client wraps the go-openai client for a configurable endpoint
type Client struct {
	client         *openai.Client
	logger         *zap.Logger
	model          string
	embeddingModel string
	dimensions     int
	timeout        time.Duration
}

// Options configures a Client
type Options struct {
	APIKey         string
	Endpoint       string
	Model          string
	EmbeddingModel string
	// Dimensions is the expected embedding dimensionality; 0 disables the check
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a client for the configured OpenAI-compatible endpoint
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.Endpoint

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}

	client := &Client{
		client:         openai.NewClientWithConfig(cfg),
		logger:         logger,
		model:          opts.Model,
		embeddingModel: opts.EmbeddingModel,
		dimensions:     opts.Dimensions,
		timeout:        timeout,
	}

	logger.Info("LLM client initialized",
		zap.String("endpoint", opts.Endpoint),
		zap.String("model", opts.Model),
		zap.String("embedding_model", opts.EmbeddingModel),
		zap.Duration("completion_timeout", timeout),
	)

	return client, nil
}

// Model returns the configured completion model name
func (c *Client) Model() string {
	return c.model
}

// Complete invokes the chat completion endpoint once. It never returns an
// error: timeouts, transport failures, non-success statuses and malformed
// payloads all produce a failed CompletionResult.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) CompletionResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
		Stream:      false,
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		kind := classifyError(err)
		c.logger.Error("Completion call failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return CompletionResult{Failed: true, Kind: kind}
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("Completion response contained no choices",
			zap.String("model", c.model),
		)
		return CompletionResult{Failed: true, Kind: FailureMalformed}
	}

	return CompletionResult{Text: resp.Choices[0].Message.Content}
}

// EmbedQuery generates an embedding for a single text with retry and
// dimension validation
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	embedding, err := c.createEmbeddingWithRetry(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	if c.dimensions > 0 && len(embedding) != c.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), c.dimensions)
	}

	return embedding, nil
}

// createEmbeddingWithRetry creates an embedding with exponential backoff
func (c *Client) createEmbeddingWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	delay := BaseRetryDelay

	for attempt := 0; attempt < MaxEmbeddingRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		if err != nil {
			lastErr = err
			if isRetryable(err) {
				continue
			}
			return nil, err
		}

		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}

		return resp.Data[0].Embedding, nil
	}

	return nil, fmt.Errorf("exhausted all retry attempts: %w", lastErr)
}

// classifyError maps a completion error to a failure kind
func classifyError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return FailureStatus
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if errors.Is(reqErr.Err, context.DeadlineExceeded) {
			return FailureTimeout
		}
		return FailureStatus
	}

	return FailureTransport
}

// isRetryable reports whether an embedding error is worth retrying
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return false
}
