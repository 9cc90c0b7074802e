package convert

import "context"

// markupConverter is a passthrough for files already in the native
// chapter markup.
type markupConverter struct{}

// NewMarkupConverter creates the passthrough converter.
func NewMarkupConverter() Converter {
	return &markupConverter{}
}

func (c *markupConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return string(input), nil
}

func (c *markupConverter) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (c *markupConverter) Name() string {
	return "markup"
}
