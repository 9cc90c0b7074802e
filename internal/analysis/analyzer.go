// Package analysis derives reading statistics from chapter markup.
package analysis

import (
	"strings"
	"time"
	"unicode"
)

// WordsPerMinute is the adult silent-reading rate used for reading
// time estimates.
const WordsPerMinute = 230

// Analyzer computes word counts and reading time from markup text.
type Analyzer struct{}

// NewAnalyzer creates a content analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// CountWords counts the words in markup text. Syntax characters are
// stripped first so formatting does not inflate the count.
func (a *Analyzer) CountWords(markup string) int {
	text := a.cleanMarkup(markup)

	words := strings.FieldsFunc(text, unicode.IsSpace)

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 0 {
			count++
		}
	}
	return count
}

// ReadingTime estimates how long the text takes to read, rounded up to
// a whole minute with a one-minute floor.
func (a *Analyzer) ReadingTime(wordCount int) time.Duration {
	if wordCount <= 0 {
		return 0
	}
	minutes := (wordCount + WordsPerMinute - 1) / WordsPerMinute
	return time.Duration(minutes) * time.Minute
}

// cleanMarkup removes markup syntax from text.
func (a *Analyzer) cleanMarkup(markup string) string {
	text := a.removeCodeBlocks(markup)

	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "_", "")
	text = strings.ReplaceAll(text, "~~", "")
	text = strings.ReplaceAll(text, "#", "")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			line = strings.TrimPrefix(line, "- ")
		}
		if len(line) > 2 && unicode.IsDigit(rune(line[0])) && line[1] == '.' {
			line = line[2:]
		}
		line = strings.TrimPrefix(line, "> ")
		cleaned = append(cleaned, line)
	}
	text = strings.Join(cleaned, " ")

	text = strings.ReplaceAll(text, "---", "")
	return text
}

func (a *Analyzer) removeCodeBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			break
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			break
		}
		text = text[:start] + text[start+end+6:]
	}
	return text
}
