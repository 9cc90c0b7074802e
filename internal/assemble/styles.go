package assemble

import (
	"fmt"

	"folio/internal/domain/models"
)

// Style is the resolved set of presentation parameters used for one
// assembly. Either copied from a template or the built-in defaults.
type Style struct {
	FontFamily string
	FontSize   string
	LineHeight float64
	MaxWidth   int
	Alignment  string
}

// DefaultStyle returns the documented built-in style used when no
// template is supplied: serif body, 1.8 line height, justified text,
// 800px max width.
func DefaultStyle() Style {
	return Style{
		FontFamily: "Georgia, 'Times New Roman', serif",
		FontSize:   "12pt",
		LineHeight: 1.8,
		MaxWidth:   800,
		Alignment:  "justify",
	}
}

// ResolveStyle returns the style for the given template, falling back
// to defaults when the template is nil.
func ResolveStyle(t *models.Template) Style {
	if t == nil {
		return DefaultStyle()
	}
	return Style{
		FontFamily: t.FontFamily,
		FontSize:   t.FontSize,
		LineHeight: t.LineHeight,
		MaxWidth:   t.MaxWidth,
		Alignment:  t.Alignment,
	}
}

// CSS renders the style block. Format renderers that package chapters
// individually reuse it as their stylesheet.
func (s Style) CSS() string {
	return s.css()
}

// css renders the style block. %g keeps line-height rendering stable
// across identical inputs.
func (s Style) css() string {
	return fmt.Sprintf(`body {
  font-family: %s;
  font-size: %s;
  line-height: %g;
  max-width: %dpx;
  margin: 0 auto;
  padding: 2rem;
  text-align: %s;
}
h1, h2, h3 { text-align: left; }
.toc ol { list-style: none; padding-left: 0; }
.cover { text-align: center; page-break-after: always; }
.cover img { max-width: 100%%; }
.chapter { page-break-before: always; }
.copyright { font-size: 0.85em; page-break-after: always; }
.back-matter { font-size: 0.85em; margin-top: 4rem; }
.watermark-overlay {
  position: fixed;
  inset: 0;
  pointer-events: none;
  background: url("data:image/svg+xml;utf8,<svg xmlns='http://www.w3.org/2000/svg' width='400' height='200'><text x='50%%' y='50%%' fill='rgba(0,0,0,0.06)' font-size='32' text-anchor='middle' transform='rotate(-30 200 100)'>Folio Free</text></svg>") repeat;
}
.watermark-banner {
  text-align: center;
  font-size: 0.8em;
  color: #888;
  padding: 0.5rem;
  border-top: 1px solid #ddd;
}`, s.FontFamily, s.FontSize, s.LineHeight, s.MaxWidth, s.Alignment)
}
