package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// AnthropicProvider generates text through the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider using the given API key and
// default model.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

var _ Provider = (*AnthropicProvider)(nil)

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (string, error) {
	message, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return "", p.wrapErr(ctx, err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func (p *AnthropicProvider) Stream(ctx context.Context, req *Request) (<-chan Chunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.buildParams(req))

	chunks := make(chan Chunk, 10)
	go func() {
		defer close(chunks)

		for stream.Next() {
			event := stream.Current()
			switch e := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if e.Delta.Type == "text_delta" && e.Delta.Text != "" {
					select {
					case chunks <- Chunk{Text: e.Delta.Text}:
					case <-ctx.Done():
						chunks <- Chunk{Err: ctx.Err()}
						return
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			chunks <- Chunk{Err: p.wrapErr(ctx, err)}
		}
	}()

	return chunks, nil
}

func (p *AnthropicProvider) buildParams(req *Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	prompt := req.Prompt
	if req.Context != "" {
		prompt = fmt.Sprintf("Continue the following manuscript text.\n\n%s\n\nInstruction: %s", req.Context, req.Prompt)
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

// wrapErr classifies failures: a cancelled context stays a context
// error; everything else is a confirmed provider failure.
func (p *AnthropicProvider) wrapErr(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return err
	}
	return &ProviderError{Provider: p.Name(), Err: err}
}
