package export

import (
	"context"

	"folio/internal/domain/models"
)

// HTMLRenderer emits the assembled document unchanged. HTML is the
// identity format: the assembler's output is already the artifact.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer { return &HTMLRenderer{} }

func (r *HTMLRenderer) Format() models.ExportFormat { return models.FormatHTML }
func (r *HTMLRenderer) ContentType() string         { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) Extension() string           { return "html" }

func (r *HTMLRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	return []byte(doc.HTML), nil
}
