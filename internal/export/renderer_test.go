package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"folio/internal/assemble"
	"folio/internal/domain/models"
)

func testDocument() *Document {
	project := &models.Project{
		ID:       "p1",
		Title:    "The Silent Orchard",
		Language: "en",
		Metadata: models.Metadata{
			Version:    models.MetadataVersion,
			AuthorName: "R. Calloway",
			Identifier: "978-0-00-000000-0",
		},
	}
	chapters := []models.Chapter{
		{ID: "c1", ProjectID: "p1", Title: "Intro", Content: "It began quietly.", SortOrder: 1},
		{ID: "c2", ProjectID: "p1", Title: "Body", Content: "The **middle** of things.", SortOrder: 2},
	}
	return &Document{
		Project:  project,
		Chapters: chapters,
		HTML:     "<!DOCTYPE html>\n<html><body>assembled</body></html>",
		ChapterHTML: []string{
			"<p>It began quietly.</p>",
			"<p>The <strong>middle</strong> of things.</p>",
		},
		Style:       assemble.DefaultStyle(),
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRegistryRoutesAllFormats(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		format      models.ExportFormat
		contentType string
		extension   string
	}{
		{models.FormatHTML, "text/html; charset=utf-8", "html"},
		{models.FormatEPUB, "application/epub+zip", "epub"},
		{models.FormatPDF, "application/pdf", "pdf"},
		{models.FormatMOBI, "application/x-mobipocket-ebook", "mobi"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, err := reg.Get(tt.format)
			if err != nil {
				t.Fatalf("Get(%q): %v", tt.format, err)
			}
			if r.ContentType() != tt.contentType {
				t.Errorf("ContentType() = %q, want %q", r.ContentType(), tt.contentType)
			}
			if r.Extension() != tt.extension {
				t.Errorf("Extension() = %q, want %q", r.Extension(), tt.extension)
			}
		})
	}
}

func TestRegistryRejectsUnknownFormat(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get(models.ExportFormat("docx")); err == nil {
		t.Fatal("expected error for unregistered format")
	}
}

func TestHTMLRenderIsIdentity(t *testing.T) {
	doc := testDocument()
	out, err := NewHTMLRenderer().Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != doc.HTML {
		t.Error("HTML renderer must emit the assembled document unchanged")
	}
}

func TestEPUBRenderProducesZipContainer(t *testing.T) {
	out, err := NewEPUBRenderer().Render(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// EPUB is a ZIP archive; PK is the local-file-header magic.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Error("EPUB output is not a zip container")
	}
}

func TestEPUBRenderCleansUpTempStylesheet(t *testing.T) {
	before, err := filepath.Glob(filepath.Join(os.TempDir(), "folio-epub-*.css"))
	if err != nil {
		t.Fatal(err)
	}

	// The stylesheet temp file must live until WriteTo has read it,
	// then go away.
	if _, err := NewEPUBRenderer().Render(context.Background(), testDocument()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	after, err := filepath.Glob(filepath.Join(os.TempDir(), "folio-epub-*.css"))
	if err != nil {
		t.Fatal(err)
	}
	if len(after) > len(before) {
		t.Errorf("temp stylesheets left behind: %v", after)
	}
}

func TestEPUBRenderEscapesChapterTitle(t *testing.T) {
	doc := testDocument()
	doc.Chapters[0].Title = `One <script> & Two`

	out, err := NewEPUBRenderer().Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("read epub archive: %v", err)
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".xhtml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Contains(data, []byte("<script>")) {
			t.Errorf("raw markup from chapter title survived in %s", f.Name)
		}
	}
}

func TestPDFRenderProducesPDFHeader(t *testing.T) {
	out, err := NewPDFRenderer().Render(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("PDF output missing %PDF- header")
	}
}

func TestPDFPlainTextStripsMarkup(t *testing.T) {
	r := NewPDFRenderer()
	got := r.plainText("<p>The <strong>middle</strong> &amp; the end.</p>")
	want := "The middle & the end."
	if got != want {
		t.Errorf("plainText = %q, want %q", got, want)
	}
}

func TestMOBIRenderMatchesEPUBContainer(t *testing.T) {
	out, err := NewMOBIRenderer().Render(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Error("MOBI output is not an EPUB container")
	}
}
