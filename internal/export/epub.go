package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"

	epub "github.com/go-shiori/go-epub"

	"folio/internal/assemble"
	"folio/internal/domain/models"
)

// EPUBRenderer packages the document as an EPUB: one spine section per
// chapter, shared stylesheet, metadata from the project.
type EPUBRenderer struct{}

func NewEPUBRenderer() *EPUBRenderer { return &EPUBRenderer{} }

func (r *EPUBRenderer) Format() models.ExportFormat { return models.FormatEPUB }
func (r *EPUBRenderer) ContentType() string         { return "application/epub+zip" }
func (r *EPUBRenderer) Extension() string           { return "epub" }

func (r *EPUBRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	p := doc.Project

	e, err := epub.NewEpub(p.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create epub: %w", err)
	}

	author := p.Metadata.AuthorName
	if author == "" {
		author = "Unknown Author"
	}
	e.SetAuthor(author)

	if p.Language != "" {
		e.SetLang(p.Language)
	} else {
		e.SetLang("en")
	}
	if p.Metadata.Identifier != "" {
		e.SetIdentifier(p.Metadata.Identifier)
	}
	if len(p.Metadata.Keywords) > 0 {
		e.SetDescription(p.Title)
	}

	cssPath, tmpPath, err := r.addStylesheet(e, doc.Style)
	if err != nil {
		return nil, err
	}
	// go-epub reads stylesheet sources lazily during WriteTo, so the
	// temp file has to survive until the archive is written.
	defer os.Remove(tmpPath)

	for i, ch := range doc.Chapters {
		body := fmt.Sprintf("<h2>%s</h2>\n%s", html.EscapeString(ch.Title), doc.ChapterHTML[i])
		filename := fmt.Sprintf("%s.xhtml", assemble.ChapterAnchor(ch))
		if _, err := e.AddSection(body, ch.Title, filename, cssPath); err != nil {
			return nil, fmt.Errorf("failed to add chapter %q to epub: %w", ch.Title, err)
		}
	}

	if doc.Watermark {
		banner := fmt.Sprintf("<p class=\"watermark-banner\">%s</p>", assemble.WatermarkBanner)
		if _, err := e.AddSection(banner, "About this edition", "watermark.xhtml", cssPath); err != nil {
			return nil, fmt.Errorf("failed to add watermark section: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write epub: %w", err)
	}
	return buf.Bytes(), nil
}

// addStylesheet writes the resolved style to a temp file so go-epub can
// ingest it; the library only accepts stylesheet sources by path or URL.
// The caller removes the returned temp path once the epub is written.
func (r *EPUBRenderer) addStylesheet(e *epub.Epub, style assemble.Style) (internalPath, tmpPath string, err error) {
	tmp, err := os.CreateTemp("", "folio-epub-*.css")
	if err != nil {
		return "", "", fmt.Errorf("failed to create stylesheet temp file: %w", err)
	}
	tmpPath = tmp.Name()

	if _, err := tmp.WriteString(style.CSS()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("failed to write stylesheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("failed to close stylesheet temp file: %w", err)
	}

	internalPath, err = e.AddCSS(tmpPath, "styles.css")
	if err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("failed to add stylesheet to epub: %w", err)
	}
	return internalPath, tmpPath, nil
}
