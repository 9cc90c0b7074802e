// Package assemble composes a complete publishing document from a
// project, its transformed chapters, a style template and a watermark
// flag. Assembly is pure and deterministic: identical inputs produce
// byte-identical output, which is what makes export retries and
// output caching safe.
package assemble

import (
	"fmt"
	"html"
	"strings"
	"time"

	"folio/internal/domain/models"
	"folio/internal/markup"
)

// Input carries everything one assembly needs. Chapters must already be
// in reading order; the assembler does not sort.
type Input struct {
	Project   *models.Project
	Chapters  []models.Chapter
	Template  *models.Template
	Watermark bool
}

// Assembler renders assembly inputs to a single HTML document.
type Assembler struct {
	transformer *markup.Transformer
	now         func() time.Time
}

// New creates an Assembler. The clock is injected because the
// publication-date default is "today": tests and the orchestrator pin
// it so that output stays reproducible.
func New(transformer *markup.Transformer, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{transformer: transformer, now: now}
}

// WatermarkBanner is the upgrade prompt injected into watermarked
// exports. Kept as a constant so the non-interference test can assert
// on exactly this string.
const WatermarkBanner = "Created with Folio Free. Upgrade to remove this watermark."

// Assemble renders the document. Fixed section order: metadata head,
// cover, copyright, table of contents, chapters, back matter. The
// watermark is purely additive: it never alters chapter content.
func (a *Assembler) Assemble(in Input) string {
	p := in.Project
	style := ResolveStyle(in.Template)

	var b strings.Builder
	b.Grow(4096)

	lang := p.Language
	if lang == "" {
		lang = "en"
	}

	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=%q>\n<head>\n<meta charset=\"utf-8\">\n", lang)
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(p.Title))
	a.writeMetadata(&b, p)
	b.WriteString("<style>\n" + style.css() + "\n</style>\n</head>\n<body>\n")

	a.writeCover(&b, p)
	a.writeCopyright(&b, p)
	a.writeTOC(&b, in.Chapters)
	a.writeChapters(&b, in.Chapters)
	a.writeBackMatter(&b, p)

	if in.Watermark {
		b.WriteString("<div class=\"watermark-overlay\" aria-hidden=\"true\"></div>\n")
		fmt.Fprintf(&b, "<div class=\"watermark-banner\">%s</div>\n", WatermarkBanner)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (a *Assembler) writeMetadata(b *strings.Builder, p *models.Project) {
	m := p.Metadata

	author := m.AuthorName
	if author == "" {
		author = "Unknown Author"
	}
	fmt.Fprintf(b, "<meta name=\"author\" content=%q>\n", html.EscapeString(author))

	if m.Identifier != "" {
		fmt.Fprintf(b, "<meta name=\"identifier\" content=%q>\n", html.EscapeString(m.Identifier))
	}
	if len(m.Keywords) > 0 {
		fmt.Fprintf(b, "<meta name=\"keywords\" content=%q>\n", html.EscapeString(strings.Join(m.Keywords, ", ")))
	}

	published := a.now()
	if m.PublishedAt != nil {
		published = *m.PublishedAt
	}
	fmt.Fprintf(b, "<meta name=\"publication-date\" content=%q>\n", published.UTC().Format("2006-01-02"))
}

func (a *Assembler) writeCover(b *strings.Builder, p *models.Project) {
	b.WriteString("<section class=\"cover\" aria-label=\"Cover\">\n")
	if p.CoverURL != nil && *p.CoverURL != "" {
		fmt.Fprintf(b, "<img src=%q alt=\"Cover of %s\">\n", *p.CoverURL, html.EscapeString(p.Title))
	} else {
		b.WriteString("<div class=\"cover-placeholder\">\n")
	}
	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(p.Title))
	fmt.Fprintf(b, "<p class=\"cover-author\">%s</p>\n", html.EscapeString(authorOrDefault(p)))
	if p.CoverURL == nil || *p.CoverURL == "" {
		b.WriteString("</div>\n")
	}
	b.WriteString("</section>\n")
}

func (a *Assembler) writeCopyright(b *strings.Builder, p *models.Project) {
	m := p.Metadata

	year := a.now().UTC().Year()
	if m.PublishedAt != nil {
		year = m.PublishedAt.UTC().Year()
	}

	b.WriteString("<section class=\"copyright\" aria-label=\"Copyright\">\n")
	fmt.Fprintf(b, "<p>Copyright &copy; %d %s. All rights reserved.</p>\n", year, html.EscapeString(authorOrDefault(p)))
	if m.PublisherName != "" {
		fmt.Fprintf(b, "<p>Published by %s.</p>\n", html.EscapeString(m.PublisherName))
	}
	if m.Identifier != "" {
		fmt.Fprintf(b, "<p>Identifier: %s</p>\n", html.EscapeString(m.Identifier))
	}
	if m.DRMEnabled {
		b.WriteString("<p>No part of this publication may be reproduced without permission.</p>\n")
	}
	b.WriteString("</section>\n")
}

// writeTOC emits one entry per chapter, in chapter order, each linking
// to the matching chapter section anchor.
func (a *Assembler) writeTOC(b *strings.Builder, chapters []models.Chapter) {
	b.WriteString("<nav class=\"toc\" aria-label=\"Table of contents\">\n<h2>Contents</h2>\n<ol>\n")
	for _, ch := range chapters {
		fmt.Fprintf(b, "<li><a href=\"#%s\">%s</a></li>\n", ChapterAnchor(ch), html.EscapeString(ch.Title))
	}
	b.WriteString("</ol>\n</nav>\n")
}

func (a *Assembler) writeChapters(b *strings.Builder, chapters []models.Chapter) {
	b.WriteString("<main>\n")
	for _, ch := range chapters {
		fmt.Fprintf(b, "<section class=\"chapter\" id=%q aria-label=%q>\n", ChapterAnchor(ch), html.EscapeString(ch.Title))
		fmt.Fprintf(b, "<h2>%s</h2>\n", html.EscapeString(ch.Title))
		b.WriteString(a.transformer.Transform(ch.Content))
		b.WriteString("\n</section>\n")
	}
	b.WriteString("</main>\n")
}

func (a *Assembler) writeBackMatter(b *strings.Builder, p *models.Project) {
	m := p.Metadata

	b.WriteString("<section class=\"back-matter\" aria-label=\"Back matter\">\n")
	if m.SeriesName != "" {
		fmt.Fprintf(b, "<p>%s, book %d.</p>\n", html.EscapeString(m.SeriesName), m.SeriesNumber)
	}
	b.WriteString("<p>Produced with Folio.</p>\n</section>\n")
}

// ChapterHTML transforms a single chapter's markup. Renderers that
// package chapters individually (EPUB) use this instead of slicing the
// assembled document.
func (a *Assembler) ChapterHTML(ch models.Chapter) string {
	return a.transformer.Transform(ch.Content)
}

// ChapterAnchor derives the stable anchor id for a chapter section.
// Derived from chapter identity, not order, so anchors survive
// reordering.
func ChapterAnchor(ch models.Chapter) string {
	return "chapter-" + ch.ID
}

func authorOrDefault(p *models.Project) string {
	if p.Metadata.AuthorName != "" {
		return p.Metadata.AuthorName
	}
	return "Unknown Author"
}
