// Package processor turns documents into translation lines and back.
//
// Every processor implements linetl.ContentProcessor: Extract returns the
// segments to translate plus an opaque parse result, and Apply rebuilds the
// document from translated segments in the same order.
package processor

import (
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/linetl"
)

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = linetl.ContentProcessor

// Content types understood by the processors in this package.
const (
	ContentText     = "text"
	ContentMarkdown = "markdown"
	ContentSRT      = "srt"
	ContentHTML     = "html"
)

// All returns one processor per content type.
func All() []ContentProcessor {
	return []ContentProcessor{
		NewTextProcessor(),
		NewMarkdownProcessor(),
		NewSRTProcessor(),
		NewHTMLProcessor(),
	}
}

var extensions = map[string]string{
	".txt":      ContentText,
	".md":       ContentMarkdown,
	".markdown": ContentMarkdown,
	".mdx":      ContentMarkdown,
	".srt":      ContentSRT,
	".html":     ContentHTML,
	".htm":      ContentHTML,
}

// ContentTypeForFile guesses the content type from a file name. Unknown
// extensions are treated as plain text.
func ContentTypeForFile(name string) string {
	if ct, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return ContentText
}

// countError reports a translated slice that does not match the extracted one.
func countError(contentType string, want, got int) error {
	return &linetl.ProcessorError{
		Message:     "translated segment count does not match the document",
		Cause:       &linetl.CountMismatchError{Expected: want, Got: got},
		ContentType: contentType,
	}
}

func invalidParsed(contentType string) error {
	return &linetl.ProcessorError{
		Message:     "invalid parsed content type",
		ContentType: contentType,
	}
}
