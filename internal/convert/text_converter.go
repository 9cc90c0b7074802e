package convert

import (
	"context"
	"strings"
)

// textConverter imports plain text. Line endings are normalized so the
// paragraph stage of the markup pipeline sees consistent blank-line
// separators.
type textConverter struct{}

// NewTextConverter creates the plain-text converter.
func NewTextConverter() Converter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	text := strings.ReplaceAll(string(input), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

func (c *textConverter) Name() string {
	return "text"
}
