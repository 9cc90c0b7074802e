// Package markup converts the supported lightweight markup subset into
// semantic HTML. The transformation is total: malformed input degrades
// to best-effort literal output and never produces an error, because
// author-supplied text must never block an export.
package markup

import (
	"regexp"
	"strings"
)

// Transformer runs a fixed pipeline of named stages. Stage order
// matters: later rules can be corrupted by earlier ones if misordered
// (e.g. single emphasis consuming the delimiters of double emphasis),
// so the pipeline is explicit rather than an ad-hoc chain of
// substitutions.
type Transformer struct {
	stages []stage
}

type stage struct {
	name  string
	apply func(string) string
}

// New creates a Transformer with the standard stage pipeline.
func New() *Transformer {
	return &Transformer{
		stages: []stage{
			{"headings", applyHeadings},
			{"emphasis-triple", applyTripleEmphasis},
			{"emphasis-double", applyDoubleEmphasis},
			{"emphasis-single", applySingleEmphasis},
			{"links", applyLinks},
			{"list-unordered", applyUnorderedLists},
			{"list-ordered", applyOrderedLists},
			{"blockquotes", applyBlockquotes},
			{"code-blocks", applyCodeBlocks},
			{"code-inline", applyInlineCode},
			{"paragraphs", applyParagraphs},
		},
	}
}

// Transform converts markup to semantic HTML. Deterministic: identical
// input always yields identical output.
func (t *Transformer) Transform(markup string) string {
	out := normalizeNewlines(markup)
	for _, s := range t.stages {
		out = s.apply(out)
	}
	return out
}

// StageNames returns the pipeline stage names in execution order.
func (t *Transformer) StageNames() []string {
	names := make([]string, len(t.stages))
	for i, s := range t.stages {
		names[i] = s.name
	}
	return names
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

var (
	h3Re = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Re = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Re = regexp.MustCompile(`(?m)^# (.+)$`)

	tripleStarRe  = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	tripleUnderRe = regexp.MustCompile(`___(.+?)___`)
	doubleStarRe  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	doubleUnderRe = regexp.MustCompile(`__(.+?)__`)
	singleStarRe  = regexp.MustCompile(`\*([^*\n]+)\*`)
	singleUnderRe = regexp.MustCompile(`_([^_\n]+)_`)

	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

	ulItemRe = regexp.MustCompile(`^[-*] (.+)$`)
	olItemRe = regexp.MustCompile(`^\d+\. (.+)$`)

	quoteRe = regexp.MustCompile(`(?m)^> (.+)$`)

	fencedRe     = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n?(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
)

// applyHeadings converts #, ##, ### prefixed lines to h1-h3. Deeper
// prefixes are outside the supported subset and stay literal.
func applyHeadings(s string) string {
	s = h3Re.ReplaceAllString(s, "<h3>$1</h3>")
	s = h2Re.ReplaceAllString(s, "<h2>$1</h2>")
	return h1Re.ReplaceAllString(s, "<h1>$1</h1>")
}

func applyTripleEmphasis(s string) string {
	s = tripleStarRe.ReplaceAllString(s, "<strong><em>$1</em></strong>")
	return tripleUnderRe.ReplaceAllString(s, "<strong><em>$1</em></strong>")
}

func applyDoubleEmphasis(s string) string {
	s = doubleStarRe.ReplaceAllString(s, "<strong>$1</strong>")
	return doubleUnderRe.ReplaceAllString(s, "<strong>$1</strong>")
}

func applySingleEmphasis(s string) string {
	s = singleStarRe.ReplaceAllString(s, "<em>$1</em>")
	return singleUnderRe.ReplaceAllString(s, "<em>$1</em>")
}

func applyLinks(s string) string {
	return linkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
}

func applyUnorderedLists(s string) string {
	return wrapListRuns(s, ulItemRe, "ul")
}

func applyOrderedLists(s string) string {
	return wrapListRuns(s, olItemRe, "ol")
}

// wrapListRuns converts item lines and wraps each maximal run of
// consecutive item lines into a single container. Runs separated by any
// other content become independent containers; they are never merged.
// This is a known limitation of the supported subset.
func wrapListRuns(s string, itemRe *regexp.Regexp, tag string) string {
	lines := strings.Split(s, "\n")
	var out []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, "<"+tag+">")
		out = append(out, run...)
		out = append(out, "</"+tag+">")
		run = nil
	}

	for _, line := range lines {
		if m := itemRe.FindStringSubmatch(line); m != nil {
			run = append(run, "<li>"+m[1]+"</li>")
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n")
}

func applyBlockquotes(s string) string {
	return quoteRe.ReplaceAllString(s, "<blockquote>$1</blockquote>")
}

// applyCodeBlocks converts fenced code blocks. An unterminated fence
// has no closing match and degrades to literal trailing text.
func applyCodeBlocks(s string) string {
	return fencedRe.ReplaceAllString(s, "<pre><code>$1</code></pre>")
}

func applyInlineCode(s string) string {
	return inlineCodeRe.ReplaceAllString(s, "<code>$1</code>")
}

// applyParagraphs wraps blank-line-separated blocks of plain text in
// paragraph tags and converts single newlines inside a block to line
// breaks. Blocks already starting with a block-level element pass
// through untouched.
func applyParagraphs(s string) string {
	blocks := strings.Split(s, "\n\n")
	var out []string
	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		if isBlockElement(trimmed) {
			out = append(out, trimmed)
			continue
		}
		out = append(out, "<p>"+strings.ReplaceAll(trimmed, "\n", "<br>")+"</p>")
	}
	return strings.Join(out, "\n")
}

var blockPrefixes = []string{
	"<h1>", "<h2>", "<h3>", "<ul>", "<ol>", "<blockquote>", "<pre>",
}

func isBlockElement(block string) bool {
	for _, p := range blockPrefixes {
		if strings.HasPrefix(block, p) {
			return true
		}
	}
	return false
}
