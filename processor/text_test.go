package processor

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ZaguanLabs/linetl"
)

func upper(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.ToUpper(l)
	}
	return out
}

func TestTextProcessor_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		result  string
	}{
		{"simple", "Hello\nWorld", []string{"Hello", "World"}, "HELLO\nWORLD"},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b", ""}, "A\n\nB\n"},
		{"crlf", "one\r\ntwo", []string{"one", "two"}, "ONE\r\nTWO"},
		{"empty", "", []string{""}, ""},
	}

	p := NewTextProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, segments, err := p.Extract(tt.content)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if !reflect.DeepEqual(segments, tt.want) {
				t.Fatalf("segments = %q, want %q", segments, tt.want)
			}

			result, err := p.Apply(parsed, upper(segments))
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if result != tt.result {
				t.Errorf("Apply() = %q, want %q", result, tt.result)
			}
		})
	}
}

func TestMarkdownProcessor_SkipsFencedCode(t *testing.T) {
	content := "# Title\n\n```go\nfmt.Println(\"hi\")\n```\nText after\n~~~\nraw\n~~~"
	p := NewMarkdownProcessor()

	parsed, segments, err := p.Extract(content)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []string{"# Title", "", "Text after"}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("segments = %q, want %q", segments, want)
	}

	result, err := p.Apply(parsed, upper(segments))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	expected := "# TITLE\n\n```go\nfmt.Println(\"hi\")\n```\nTEXT AFTER\n~~~\nraw\n~~~"
	if result != expected {
		t.Errorf("Apply() = %q, want %q", result, expected)
	}
}

func TestTextProcessor_Types(t *testing.T) {
	if p := NewTextProcessor(); p.ContentType() != ContentText || p.DocumentType() != linetl.DocumentGeneric {
		t.Errorf("text processor = %s/%s", p.ContentType(), p.DocumentType())
	}
	if p := NewMarkdownProcessor(); p.ContentType() != ContentMarkdown || p.DocumentType() != linetl.DocumentMarkdown {
		t.Errorf("markdown processor = %s/%s", p.ContentType(), p.DocumentType())
	}
}

func TestTextProcessor_CountMismatch(t *testing.T) {
	p := NewTextProcessor()
	parsed, _, _ := p.Extract("a\nb")

	if _, err := p.Apply(parsed, []string{"A"}); err == nil {
		t.Error("Expected error when a line is missing")
	}
	if _, err := p.Apply(&parsedHTML{}, []string{"A"}); err == nil {
		t.Error("Expected error for foreign parse result")
	}
}

func TestContentTypeForFile(t *testing.T) {
	tests := map[string]string{
		"movie.srt":    ContentSRT,
		"README.MD":    ContentMarkdown,
		"doc.mdx":      ContentMarkdown,
		"index.html":   ContentHTML,
		"notes.txt":    ContentText,
		"no-extension": ContentText,
	}
	for name, want := range tests {
		if got := ContentTypeForFile(name); got != want {
			t.Errorf("ContentTypeForFile(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAll(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range All() {
		seen[p.ContentType()] = true
	}
	for _, ct := range []string{ContentText, ContentMarkdown, ContentSRT, ContentHTML} {
		if !seen[ct] {
			t.Errorf("All() is missing %s", ct)
		}
	}
}
