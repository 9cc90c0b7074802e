package analysis

import (
	"testing"
	"time"
)

func TestCountWords(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "one two three", 3},
		{"empty", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"emphasis stripped", "the **quick** brown *fox*", 4},
		{"heading marker stripped", "# Chapter One\n\nIt began.", 4},
		{"code block excluded", "before\n```\nfunc main() {}\n```\nafter", 2},
		{"list markers stripped", "- first item\n- second item", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.CountWords(tt.input); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadingTime(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		words int
		want  time.Duration
	}{
		{0, 0},
		{1, time.Minute},
		{230, time.Minute},
		{231, 2 * time.Minute},
		{2300, 10 * time.Minute},
	}

	for _, tt := range tests {
		if got := a.ReadingTime(tt.words); got != tt.want {
			t.Errorf("ReadingTime(%d) = %v, want %v", tt.words, got, tt.want)
		}
	}
}
