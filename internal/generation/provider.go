// Package generation abstracts the text-generation providers behind a
// single interface. The Anthropic provider serves production; the
// Lorem provider keeps dev and tests off the metered API.
package generation

import (
	"context"
	"fmt"
)

// Request is one generation call. Context carries surrounding chapter
// text the model should continue from; Prompt is the instruction.
type Request struct {
	Prompt    string
	Context   string
	Model     string
	MaxTokens int
}

// Chunk is one piece of a streamed response. Err, when set, ends the
// stream; the channel closes after it.
type Chunk struct {
	Text string
	Err  error
}

// Provider produces text for generation requests.
type Provider interface {
	Name() string
	// Complete returns the full response in one call.
	Complete(ctx context.Context, req *Request) (string, error)
	// Stream emits the response incrementally. The channel closes when
	// the response is complete or after an error chunk.
	Stream(ctx context.Context, req *Request) (<-chan Chunk, error)
}

// ProviderError marks a confirmed provider-side failure, as opposed to
// client cancellation. The ledger refunds credits only for these.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
