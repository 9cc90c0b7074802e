// Package export renders an assembled document into the concrete bytes
// of a delivery format. Renderers are registered per format and looked
// up by the export orchestrator after entitlement checks pass.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"folio/internal/assemble"
	"folio/internal/domain/models"
)

// Document is the render input: the fully assembled HTML plus the raw
// pieces formats like EPUB and PDF repackage chapter by chapter.
// ChapterHTML is index-aligned with Chapters.
type Document struct {
	Project     *models.Project
	Chapters    []models.Chapter
	HTML        string
	ChapterHTML []string
	Style       assemble.Style
	Watermark   bool
	GeneratedAt time.Time
}

// Renderer produces one delivery format from a Document.
type Renderer interface {
	Format() models.ExportFormat
	ContentType() string
	Extension() string
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// Registry routes export requests to the renderer for their format.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	renderers map[models.ExportFormat]Renderer
}

// NewRegistry creates a registry with the standard renderers
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[models.ExportFormat]Renderer)}

	r.Register(NewHTMLRenderer())
	r.Register(NewEPUBRenderer())
	r.Register(NewPDFRenderer())
	r.Register(NewMOBIRenderer())

	return r
}

// Register adds a renderer, replacing any previous one for the same
// format.
func (r *Registry) Register(renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[renderer.Format()] = renderer
}

// Get retrieves the renderer for a format. Returns an error for
// formats no renderer is registered for.
func (r *Registry) Get(format models.ExportFormat) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("no renderer registered for format %q", format)
	}
	return renderer, nil
}

// Formats returns all registered export formats.
func (r *Registry) Formats() []models.ExportFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]models.ExportFormat, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	return formats
}
