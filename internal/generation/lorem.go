package generation

import (
	"context"
	"strings"

	loremgen "github.com/bozaro/golorem"
)

// LoremProvider generates placeholder prose. Used for development and
// tests so neither needs an API key.
type LoremProvider struct {
	generator *loremgen.Lorem
}

// NewLoremProvider creates the placeholder provider.
func NewLoremProvider() *LoremProvider {
	return &LoremProvider{generator: loremgen.New()}
}

var _ Provider = (*LoremProvider)(nil)

func (p *LoremProvider) Name() string { return "lorem" }

func (p *LoremProvider) Complete(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.generateWords(p.targetWords(req)), nil
}

func (p *LoremProvider) Stream(ctx context.Context, req *Request) (<-chan Chunk, error) {
	text := p.generateWords(p.targetWords(req))
	words := strings.Fields(text)

	chunks := make(chan Chunk, 10)
	go func() {
		defer close(chunks)
		for _, word := range words {
			select {
			case <-ctx.Done():
				chunks <- Chunk{Err: ctx.Err()}
				return
			case chunks <- Chunk{Text: word + " "}:
			}
		}
	}()

	return chunks, nil
}

func (p *LoremProvider) targetWords(req *Request) int {
	if req.MaxTokens > 0 && req.MaxTokens < 200 {
		return req.MaxTokens
	}
	return 200
}

func (p *LoremProvider) generateWords(target int) string {
	var sb strings.Builder
	count := 0
	for count < target {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		count += len(strings.Fields(sentence))
	}
	return strings.TrimSpace(sb.String())
}
