package export

import (
	"context"

	"folio/internal/domain/models"
)

// MOBIRenderer packages the document for Kindle delivery. The artifact
// uses the EPUB container, which Kindle's current ingestion pipeline
// accepts in place of the legacy MOBI binary format.
type MOBIRenderer struct {
	epub *EPUBRenderer
}

func NewMOBIRenderer() *MOBIRenderer {
	return &MOBIRenderer{epub: NewEPUBRenderer()}
}

func (r *MOBIRenderer) Format() models.ExportFormat { return models.FormatMOBI }
func (r *MOBIRenderer) ContentType() string         { return "application/x-mobipocket-ebook" }
func (r *MOBIRenderer) Extension() string           { return "mobi" }

func (r *MOBIRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	return r.epub.Render(ctx, doc)
}
