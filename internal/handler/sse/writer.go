package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamWriter writes server-sent events. It wraps the response writer
// after the SSE headers have been sent and flushes after every event so
// fragments reach the client as they are produced.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStreamWriter prepares the response for SSE and returns a writer.
// Fails when the underlying writer cannot flush (no streaming support).
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &StreamWriter{w: w, flusher: flusher}, nil
}

// WriteEvent writes one JSON data event and flushes.
func (s *StreamWriter) WriteEvent(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment line and flushes. Comment lines
// are ignored by clients; they only keep intermediaries from closing
// the connection.
func (s *StreamWriter) WriteKeepAlive() error {
	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}
