package generation

import (
	"context"
	"strings"
	"testing"
)

func TestLoremComplete(t *testing.T) {
	p := NewLoremProvider()

	text, err := p.Complete(context.Background(), &Request{Prompt: "continue", MaxTokens: 50})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(strings.Fields(text)) < 50 {
		t.Errorf("got %d words, want at least 50", len(strings.Fields(text)))
	}
}

func TestLoremStreamDeliversAllChunks(t *testing.T) {
	p := NewLoremProvider()

	chunks, err := p.Stream(context.Background(), &Request{Prompt: "continue", MaxTokens: 30})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Text)
	}
	if len(strings.Fields(sb.String())) < 30 {
		t.Errorf("streamed %d words, want at least 30", len(strings.Fields(sb.String())))
	}
}

func TestLoremStreamStopsOnCancel(t *testing.T) {
	p := NewLoremProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks, err := p.Stream(ctx, &Request{Prompt: "continue", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	sawErr := false
	for chunk := range chunks {
		if chunk.Err != nil {
			sawErr = true
		}
	}
	if !sawErr {
		t.Error("cancelled stream must surface a context error chunk")
	}
}
