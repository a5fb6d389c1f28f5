package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// FallbackClient talks to an OpenAI-compatible secondary backend. Kind
// "openai" streams chat completions; kind "vllm" (and anything else
// OpenAI-compatible that serves batch completions) generates in one shot
// and forwards the whole text to the sink.
type FallbackClient struct {
	client         *openai.Client
	circuitBreaker *CircuitBreaker
	kind           string
	model          string
	timeout        time.Duration
}

// FallbackConfig holds secondary backend configuration.
type FallbackConfig struct {
	// BaseURL is the OpenAI-compatible API base (e.g. http://localhost:8000/v1).
	BaseURL string

	// Kind selects the generation shape: "openai" (streaming) or "vllm" (batch).
	Kind string

	// Model is the model name (default: meta-llama/Llama-2-7b-chat-hf).
	Model string

	// APIKey is optional; local vLLM deployments usually need none.
	APIKey string

	// Timeout is the request timeout duration (default: 15s).
	Timeout time.Duration
}

// NewFallbackClient creates a fallback client for an OpenAI-compatible
// endpoint.
func NewFallbackClient(config FallbackConfig) *FallbackClient {
	if config.Kind == "" {
		config.Kind = "vllm"
	}
	if config.Model == "" {
		config.Model = "meta-llama/Llama-2-7b-chat-hf"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(clientConfig)

	return &FallbackClient{
		client:         client,
		circuitBreaker: NewCircuitBreaker(config.Kind),
		kind:           config.Kind,
		model:          config.Model,
		timeout:        config.Timeout,
	}
}

// Stream generates text from the fallback backend, forwarding chunks to
// sink. Batch-shaped backends deliver the whole answer as one chunk.
func (c *FallbackClient) Stream(ctx context.Context, prompt string, sink Sink) (string, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (string, error) {
		if c.kind == "openai" {
			return c.streamChat(ctx, prompt, sink)
		}
		return c.batchChat(ctx, prompt, sink)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "", fmt.Errorf("%s circuit breaker open: %w", c.kind, err)
		}
		return "", err
	}
	return result, nil
}

func (c *FallbackClient) streamChat(ctx context.Context, prompt string, sink Sink) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: promptMessages(prompt),
		Stream:   true,
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create stream failed: %w", err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream recv failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if sink != nil {
			if err := sink(delta); err != nil {
				return "", fmt.Errorf("stream sink: %w", err)
			}
		}
	}
	return full.String(), nil
}

func (c *FallbackClient) batchChat(ctx context.Context, prompt string, sink Sink) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: promptMessages(prompt),
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.kind)
	}

	text := resp.Choices[0].Message.Content
	if sink != nil {
		if err := sink(text); err != nil {
			return "", fmt.Errorf("stream sink: %w", err)
		}
	}
	return text, nil
}

func promptMessages(prompt string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
}

// Name identifies this backend in answer attribution.
func (c *FallbackClient) Name() string {
	return c.kind
}

var _ Generator = (*FallbackClient)(nil)
