package convert

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// htmlConverter imports HTML in two stages: sanitize the input with a
// UGC policy, then convert the surviving elements to chapter markup.
// Script tags, event handlers and javascript: URLs never reach the
// stored content.
type htmlConverter struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

// NewHTMLConverter creates the HTML import converter.
func NewHTMLConverter() Converter {
	return &htmlConverter{
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	sanitized := c.policy.Sanitize(string(input))

	markup, err := c.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markup: %w", err)
	}
	return markup, nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string {
	return "html"
}
