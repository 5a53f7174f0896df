package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/synaptiq/neurag/internal/domain"
	"github.com/synaptiq/neurag/internal/metrics"
)

// Generator streams chat completions from an OpenAI-compatible API (e.g. Groq).
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	topP        float32
	provider    string
	logger      *zap.Logger
}

// GeneratorConfig holds the completion provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible streaming completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		topP:        float32(cfg.TopP),
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Stream requests a completion for prompt and invokes onDelta with each
// content fragment as it arrives. A non-nil error from onDelta aborts the
// stream; write failures are the caller's, not the provider's.
func (g *Generator) Stream(ctx context.Context, prompt string, onDelta func(delta string) error) error {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		TopP:        g.topP,
		Stream:      true,
	}

	start := time.Now()

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return parseAPIError("completion", err, domain.ErrCompletionProviderError)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.CompletionRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
			return parseAPIError("completion stream", err, domain.ErrCompletionProviderError)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			metrics.CompletionRequestsTotal.WithLabelValues(g.provider, g.model, "aborted").Inc()
			return fmt.Errorf("write delta: %w", err)
		}
	}

	metrics.CompletionRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())

	return nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
