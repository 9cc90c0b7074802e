package export

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"

	"folio/internal/assemble"
	"folio/internal/domain/models"
)

// PDFRenderer lays the document out as an A4 PDF: title page,
// copyright, then one page run per chapter. Chapter markup is reduced
// to plain text for the body font.
type PDFRenderer struct {
	strip *bluemonday.Policy
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{strip: bluemonday.StrictPolicy()}
}

func (r *PDFRenderer) Format() models.ExportFormat { return models.FormatPDF }
func (r *PDFRenderer) ContentType() string         { return "application/pdf" }
func (r *PDFRenderer) Extension() string           { return "pdf" }

func (r *PDFRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	p := doc.Project

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(p.Title, true)
	pdf.SetAuthor(authorOf(p), true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Watermark {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(136, 136, 136)
			pdf.CellFormat(0, 10, tr(assemble.WatermarkBanner), "", 0, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		})
	}

	// Title page
	pdf.AddPage()
	pdf.SetFont("Times", "B", 28)
	pdf.Ln(60)
	pdf.MultiCell(0, 14, tr(p.Title), "", "C", false)
	pdf.SetFont("Times", "", 14)
	pdf.Ln(8)
	pdf.MultiCell(0, 8, tr(authorOf(p)), "", "C", false)

	// Copyright page
	pdf.AddPage()
	pdf.SetFont("Times", "", 9)
	year := doc.GeneratedAt.UTC().Year()
	if p.Metadata.PublishedAt != nil {
		year = p.Metadata.PublishedAt.UTC().Year()
	}
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Copyright (c) %d %s. All rights reserved.", year, authorOf(p))), "", "L", false)
	if p.Metadata.Identifier != "" {
		pdf.MultiCell(0, 5, tr("Identifier: "+p.Metadata.Identifier), "", "L", false)
	}

	align := "J"
	if doc.Style.Alignment == "left" {
		align = "L"
	}

	for i, ch := range doc.Chapters {
		pdf.AddPage()
		pdf.SetFont("Times", "B", 18)
		pdf.MultiCell(0, 10, tr(ch.Title), "", "L", false)
		pdf.Ln(4)
		pdf.SetFont("Times", "", 12)
		pdf.MultiCell(0, 6, tr(r.plainText(doc.ChapterHTML[i])), "", align, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// plainText strips markup down to readable text. Sanitizing leaves
// entities escaped, so they are unescaped afterwards.
func (r *PDFRenderer) plainText(chapterHTML string) string {
	return html.UnescapeString(r.strip.Sanitize(chapterHTML))
}

func authorOf(p *models.Project) string {
	if p.Metadata.AuthorName != "" {
		return p.Metadata.AuthorName
	}
	return "Unknown Author"
}
