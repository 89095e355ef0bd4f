package processor

import (
	"regexp"
	"strings"

	"github.com/ZaguanLabs/linetl"
)

var (
	srtTiming = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}`)
	srtIndex  = regexp.MustCompile(`^\d+$`)
)

// SRTProcessor exposes only the dialogue lines of a SubRip file. Cue indices,
// timings and blank separators are written back verbatim.
type SRTProcessor struct{}

// NewSRTProcessor creates a SubRip processor.
func NewSRTProcessor() *SRTProcessor {
	return &SRTProcessor{}
}

// Extract returns the text lines of every cue.
func (p *SRTProcessor) Extract(content string) (any, []string, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	doc := splitDocument(content)

	for i, line := range doc.lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case srtTiming.MatchString(trimmed):
		case srtIndex.MatchString(trimmed) && i+1 < len(doc.lines) && srtTiming.MatchString(strings.TrimSpace(doc.lines[i+1])):
		default:
			doc.slots = append(doc.slots, i)
		}
	}

	return doc, doc.segments(), nil
}

// Apply writes translated dialogue back into the cues.
func (p *SRTProcessor) Apply(parsed any, translated []string) (string, error) {
	doc, ok := parsed.(*lineDocument)
	if !ok {
		return "", invalidParsed(ContentSRT)
	}
	return doc.apply(ContentSRT, translated)
}

// ContentType returns "srt".
func (p *SRTProcessor) ContentType() string {
	return ContentSRT
}

// DocumentType returns subtitle.
func (p *SRTProcessor) DocumentType() linetl.DocumentType {
	return linetl.DocumentSubtitle
}

var _ ContentProcessor = (*SRTProcessor)(nil)
