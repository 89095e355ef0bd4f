package processor

import (
	"strings"

	"github.com/ZaguanLabs/linetl"
)

// lineDocument is a document split on newlines. slots holds the indices of
// the lines handed to the translator; every other line is kept verbatim.
type lineDocument struct {
	lines   []string
	slots   []int
	newline string
}

func splitDocument(content string) *lineDocument {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	return &lineDocument{lines: linetl.SplitLines(content), newline: newline}
}

func (d *lineDocument) segments() []string {
	out := make([]string, len(d.slots))
	for i, idx := range d.slots {
		out[i] = d.lines[idx]
	}
	return out
}

func (d *lineDocument) apply(contentType string, translated []string) (string, error) {
	if len(translated) != len(d.slots) {
		return "", countError(contentType, len(d.slots), len(translated))
	}
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	for i, idx := range d.slots {
		out[idx] = translated[i]
	}
	return strings.Join(out, d.newline), nil
}

// TextProcessor translates a document line by line. The markdown variant
// leaves fenced code blocks untouched.
type TextProcessor struct {
	contentType string
	docType     linetl.DocumentType
	skipFences  bool
}

// NewTextProcessor creates a processor for plain text.
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{contentType: ContentText, docType: linetl.DocumentGeneric}
}

// NewMarkdownProcessor creates a processor for Markdown.
func NewMarkdownProcessor() *TextProcessor {
	return &TextProcessor{contentType: ContentMarkdown, docType: linetl.DocumentMarkdown, skipFences: true}
}

// Extract splits content into lines.
func (p *TextProcessor) Extract(content string) (any, []string, error) {
	doc := splitDocument(content)

	var fence string
	for i, line := range doc.lines {
		if p.skipFences {
			trimmed := strings.TrimSpace(line)
			if fence != "" {
				if strings.HasPrefix(trimmed, fence) {
					fence = ""
				}
				continue
			}
			if marker := fenceMarker(trimmed); marker != "" {
				fence = marker
				continue
			}
		}
		doc.slots = append(doc.slots, i)
	}

	return doc, doc.segments(), nil
}

// Apply joins translated lines with the document's original line ending.
func (p *TextProcessor) Apply(parsed any, translated []string) (string, error) {
	doc, ok := parsed.(*lineDocument)
	if !ok {
		return "", invalidParsed(p.contentType)
	}
	return doc.apply(p.contentType, translated)
}

// ContentType returns "text" or "markdown".
func (p *TextProcessor) ContentType() string {
	return p.contentType
}

// DocumentType returns the context prompt flavor for LLM batching.
func (p *TextProcessor) DocumentType() linetl.DocumentType {
	return p.docType
}

// fenceMarker returns the fence that opens a code block, or "".
func fenceMarker(line string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, marker) {
			return marker
		}
	}
	return ""
}

var _ ContentProcessor = (*TextProcessor)(nil)
