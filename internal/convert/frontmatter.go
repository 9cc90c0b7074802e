package convert

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the optional metadata block an imported markdown file
// may open with:
//
//	---
//	title: The Long Night
//	status: edited
//	---
//	Chapter text here.
type Frontmatter struct {
	Title  string `yaml:"title"`
	Status string `yaml:"status"`
}

var frontmatterDelim = []byte("---")

// SplitFrontmatter separates a frontmatter block from the body. Files
// without a block, or with one that fails to parse as YAML, are
// returned whole with ok=false; import never fails on metadata.
func SplitFrontmatter(content string) (fm Frontmatter, body string, ok bool) {
	raw := []byte(content)
	if !bytes.HasPrefix(raw, []byte("---\n")) && !bytes.HasPrefix(raw, []byte("---\r\n")) {
		return Frontmatter{}, content, false
	}

	lines := bytes.Split(raw, []byte("\n"))
	closing := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), frontmatterDelim) {
			closing = i
			break
		}
	}
	if closing == 0 {
		return Frontmatter{}, content, false
	}

	block := bytes.Join(lines[1:closing], []byte("\n"))
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Frontmatter{}, content, false
	}

	body = string(bytes.Join(lines[closing+1:], []byte("\n")))
	return fm, body, true
}
