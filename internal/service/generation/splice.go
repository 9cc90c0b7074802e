package generation

import (
	"strings"
	"unicode/utf8"
)

// validSpan reports whether [start, end) is a valid rune span of text.
// Offsets are rune indices, not byte indices, so multi-byte content
// cannot produce a splice inside a code point.
func validSpan(text string, start, end int) bool {
	if start < 0 || start > end {
		return false
	}
	return end <= utf8.RuneCountInString(text)
}

// splice replaces the rune span [start, end) of text with replacement.
// Callers must have checked the span with validSpan.
func splice(text string, start, end int, replacement string) string {
	runes := []rune(text)

	var b strings.Builder
	b.Grow(len(text) + len(replacement))
	b.WriteString(string(runes[:start]))
	b.WriteString(replacement)
	b.WriteString(string(runes[end:]))
	return b.String()
}
