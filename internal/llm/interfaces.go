// Package llm contains the generation backends and the orchestrator that
// sequences them: response cache, primary streaming backend with bounded
// retry, and a secondary fallback backend.
package llm

import "context"

// Sink receives generated text chunks as they arrive. Returning an error
// aborts the generation.
type Sink func(chunk string) error

// Generator produces text for a prompt, forwarding chunks to the sink as
// they arrive and returning the accumulated full text.
type Generator interface {
	// Stream generates text for the prompt. Chunks are forwarded to sink
	// incrementally; the full accumulated text is returned on success.
	Stream(ctx context.Context, prompt string, sink Sink) (string, error)

	// Name identifies the backend for attribution and logging.
	Name() string
}
