package convert

import (
	"context"
	"strings"
	"testing"
)

func TestMarkupPassthrough(t *testing.T) {
	reg := NewRegistry()
	in := "# Title\n\nBody **bold**."

	out, err := reg.Convert(context.Background(), "draft.md", []byte(in))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != in {
		t.Errorf("markup files must pass through unchanged, got %q", out)
	}
}

func TestTextNormalizesLineEndings(t *testing.T) {
	reg := NewRegistry()

	out, err := reg.Convert(context.Background(), "draft.txt", []byte("one\r\n\r\ntwo\r\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(out, "\r") {
		t.Error("carriage returns must be stripped")
	}
	if out != "one\n\ntwo" {
		t.Errorf("got %q", out)
	}
}

func TestHTMLImportStripsScripts(t *testing.T) {
	reg := NewRegistry()
	in := `<h1>Title</h1><script>alert(1)</script><p>Body with <strong>bold</strong>.</p>`

	out, err := reg.Convert(context.Background(), "draft.html", []byte(in))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(out, "alert") || strings.Contains(out, "script") {
		t.Errorf("script content survived import: %q", out)
	}
	if !strings.Contains(out, "# Title") {
		t.Errorf("heading not converted: %q", out)
	}
	if !strings.Contains(out, "**bold**") {
		t.Errorf("bold not converted: %q", out)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Convert(context.Background(), "draft.docx", []byte("x")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestExtensionLookupIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Convert(context.Background(), "DRAFT.MD", []byte("x")); err != nil {
		t.Fatalf("uppercase extension should route: %v", err)
	}
}
