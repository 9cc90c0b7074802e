// Package convert turns uploaded manuscript files into the markup
// dialect chapters are stored in. Converters are routed by file
// extension through a registry.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Converter transforms one uploaded file format into chapter markup.
type Converter interface {
	Convert(ctx context.Context, input []byte) (string, error)
	SupportedExtensions() []string
	Name() string
}

// Registry manages converters and routes files by extension.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry creates a registry with the standard converters
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter)}

	r.Register(NewMarkupConverter())
	r.Register(NewTextConverter())
	r.Register(NewHTMLConverter())

	return r
}

// Register adds a converter for each of its supported extensions.
// Extensions are normalized to lowercase with a leading dot.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range c.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = c
	}
}

// Convert selects a converter from the filename's extension and runs
// it. Returns an error when no converter handles the extension.
func (r *Registry) Convert(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.mu.RLock()
	c, ok := r.converters[ext]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
	return c.Convert(ctx, content)
}

// SupportedExtensions returns all registered file extensions.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	return exts
}
