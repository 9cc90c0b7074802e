package markup

import (
	"strings"
	"testing"
)

func TestTransformHeadings(t *testing.T) {
	tr := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"level 1", "# Title", "<h1>Title</h1>"},
		{"level 2", "## Title", "<h2>Title</h2>"},
		{"level 3", "### Title", "<h3>Title</h3>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Transform(tt.input)
			if got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransformEmphasisPrecedence(t *testing.T) {
	tr := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"triple star", "***x***", "<p><strong><em>x</em></strong></p>"},
		{"triple underscore", "___x___", "<p><strong><em>x</em></strong></p>"},
		{"double star", "**x**", "<p><strong>x</strong></p>"},
		{"double underscore", "__x__", "<p><strong>x</strong></p>"},
		{"single star", "*x*", "<p><em>x</em></p>"},
		{"single underscore", "_x_", "<p><em>x</em></p>"},
		{"double does not leak into single", "**bold** and *italic*",
			"<p><strong>bold</strong> and <em>italic</em></p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Transform(tt.input)
			if got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransformLinks(t *testing.T) {
	tr := New()

	got := tr.Transform("see [the docs](https://example.com/docs)")
	want := `<p>see <a href="https://example.com/docs">the docs</a></p>`
	if got != want {
		t.Errorf("Transform link = %q, want %q", got, want)
	}
}

func TestTransformListContiguity(t *testing.T) {
	tr := New()

	t.Run("contiguous run becomes one container", func(t *testing.T) {
		got := tr.Transform("- one\n- two\n- three")
		if strings.Count(got, "<ul>") != 1 {
			t.Errorf("expected exactly 1 <ul>, got %d in %q", strings.Count(got, "<ul>"), got)
		}
		if strings.Count(got, "<li>") != 3 {
			t.Errorf("expected 3 <li>, got %d in %q", strings.Count(got, "<li>"), got)
		}
	})

	t.Run("runs split by a paragraph become two containers", func(t *testing.T) {
		got := tr.Transform("- one\n- two\n\nan interruption\n\n- three")
		if strings.Count(got, "<ul>") != 2 {
			t.Errorf("expected exactly 2 <ul>, got %d in %q", strings.Count(got, "<ul>"), got)
		}
	})

	t.Run("ordered list", func(t *testing.T) {
		got := tr.Transform("1. first\n2. second")
		if strings.Count(got, "<ol>") != 1 {
			t.Errorf("expected exactly 1 <ol>, got %d in %q", strings.Count(got, "<ol>"), got)
		}
		if strings.Count(got, "<li>") != 2 {
			t.Errorf("expected 2 <li>, got %d in %q", strings.Count(got, "<li>"), got)
		}
	})

	t.Run("ordered and unordered stay separate", func(t *testing.T) {
		got := tr.Transform("- bullet\n\n1. numbered")
		if strings.Count(got, "<ul>") != 1 || strings.Count(got, "<ol>") != 1 {
			t.Errorf("expected one <ul> and one <ol>, got %q", got)
		}
	})
}

func TestTransformBlockquote(t *testing.T) {
	tr := New()

	got := tr.Transform("> wisdom")
	if !strings.Contains(got, "<blockquote>wisdom</blockquote>") {
		t.Errorf("Transform blockquote = %q", got)
	}
}

func TestTransformCode(t *testing.T) {
	tr := New()

	t.Run("fenced block", func(t *testing.T) {
		got := tr.Transform("```\nx := 1\n```")
		if !strings.Contains(got, "<pre><code>x := 1\n</code></pre>") {
			t.Errorf("Transform fenced = %q", got)
		}
	})

	t.Run("unterminated fence degrades to literal", func(t *testing.T) {
		got := tr.Transform("```\nx := 1")
		if strings.Contains(got, "<pre>") {
			t.Errorf("unterminated fence should not produce <pre>, got %q", got)
		}
	})

	t.Run("inline code", func(t *testing.T) {
		got := tr.Transform("use `foo()` here")
		if !strings.Contains(got, "<code>foo()</code>") {
			t.Errorf("Transform inline code = %q", got)
		}
	})
}

func TestTransformParagraphs(t *testing.T) {
	tr := New()

	got := tr.Transform("first block\n\nsecond block")
	if strings.Count(got, "<p>") != 2 {
		t.Errorf("expected 2 paragraphs, got %q", got)
	}

	got = tr.Transform("line one\nline two")
	if !strings.Contains(got, "line one<br>line two") {
		t.Errorf("single newline should become <br>, got %q", got)
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	tr := New()

	inputs := []string{
		"# Title\n\nSome **bold** text with a [link](https://x.test).",
		"- a\n- b\n\n> quote\n\n```\ncode\n```",
		"plain text only",
		"***everything*** _at_ `once`",
	}

	for _, in := range inputs {
		first := tr.Transform(in)
		for i := 0; i < 5; i++ {
			if got := tr.Transform(in); got != first {
				t.Fatalf("Transform(%q) not deterministic: %q vs %q", in, first, got)
			}
		}
	}
}

func TestTransformNeverFails(t *testing.T) {
	tr := New()

	// Malformed inputs must degrade to literal-ish output, never panic
	// or return an error (the function has no error to return).
	inputs := []string{
		"",
		"***unclosed",
		"[text](",
		"``` ``` ```",
		"****",
		strings.Repeat("*", 100),
	}

	for _, in := range inputs {
		out := tr.Transform(in)
		_ = out
	}
}

func TestStageOrder(t *testing.T) {
	want := []string{
		"headings",
		"emphasis-triple",
		"emphasis-double",
		"emphasis-single",
		"links",
		"list-unordered",
		"list-ordered",
		"blockquotes",
		"code-blocks",
		"code-inline",
		"paragraphs",
	}

	got := New().StageNames()
	if len(got) != len(want) {
		t.Fatalf("stage count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
