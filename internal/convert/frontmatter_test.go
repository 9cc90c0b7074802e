package convert

import "testing"

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantTitle string
		wantBody  string
	}{
		{
			name:      "title and body",
			input:     "---\ntitle: Chapter One\n---\nOpening line.",
			wantOK:    true,
			wantTitle: "Chapter One",
			wantBody:  "Opening line.",
		},
		{
			name:     "no block",
			input:    "Just prose, no metadata.",
			wantOK:   false,
			wantBody: "Just prose, no metadata.",
		},
		{
			name:     "unclosed block stays intact",
			input:    "---\ntitle: Broken\nNo closing delimiter.",
			wantOK:   false,
			wantBody: "---\ntitle: Broken\nNo closing delimiter.",
		},
		{
			name:     "invalid yaml stays intact",
			input:    "---\n: [unbalanced\n---\nBody.",
			wantOK:   false,
			wantBody: "---\n: [unbalanced\n---\nBody.",
		},
		{
			name:     "horizontal rule mid-document is not frontmatter",
			input:    "First paragraph.\n\n---\n\nSecond paragraph.",
			wantOK:   false,
			wantBody: "First paragraph.\n\n---\n\nSecond paragraph.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, ok := SplitFrontmatter(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if fm.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", fm.Title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
