package linetl

import (
	"strings"
	"unicode/utf8"
)

// Chunk delimiters. DeepLX mangles newlines, so its lines are joined with "<>".
const (
	DefaultChunkDelimiter = "\n"
	DeepLXChunkDelimiter  = "<>"
)

// ChunkDelimiter returns the line separator used in chunk mode for m.
func ChunkDelimiter(m Method) string {
	if m == MethodDeepLX {
		return DeepLXChunkDelimiter
	}
	return DefaultChunkDelimiter
}

// Chunk is a run of consecutive source lines sent as one request.
type Chunk struct {
	Start int // index of the first line
	End   int // index past the last line
	Text  string
}

// ChunkLines groups lines into chunks whose joined length stays within
// maxChars characters (runes, not bytes). A line is never split; a line
// longer than maxChars gets a chunk of its own. Blank lines stay in place as
// empty segments.
func ChunkLines(lines []string, maxChars int, delimiter string) []Chunk {
	var chunks []Chunk
	start, size := 0, 0

	flush := func(end int) {
		if end > start {
			chunks = append(chunks, Chunk{
				Start: start,
				End:   end,
				Text:  strings.Join(lines[start:end], delimiter),
			})
		}
		start, size = end, 0
	}

	sep := utf8.RuneCountInString(delimiter)
	for i, line := range lines {
		chars := utf8.RuneCountInString(line)
		n := chars
		if i > start {
			n += sep
		}
		if i > start && maxChars > 0 && size+n > maxChars {
			flush(i)
			n = chars
		}
		size += n
	}
	flush(len(lines))
	return chunks
}

// Align maps a translated chunk back onto its source lines. Lines that were
// blank in the source stay blank. When the provider dropped or merged blank
// segments, the non-empty segments are laid over the non-blank source lines
// instead; if that does not fit either, a *CountMismatchError is returned.
func (c Chunk) Align(translated string, source []string, delimiter string) ([]string, error) {
	want := c.End - c.Start
	segments := strings.Split(translated, delimiter)
	out := make([]string, want)

	if len(segments) == want {
		for i, seg := range segments {
			if strings.TrimSpace(source[c.Start+i]) == "" {
				out[i] = source[c.Start+i]
				continue
			}
			out[i] = strings.TrimSuffix(seg, "\r")
		}
		return out, nil
	}

	var filled []string
	for _, seg := range segments {
		if strings.TrimSpace(seg) != "" {
			filled = append(filled, strings.TrimSuffix(seg, "\r"))
		}
	}
	next := 0
	for i := 0; i < want; i++ {
		src := source[c.Start+i]
		if strings.TrimSpace(src) == "" {
			out[i] = src
			continue
		}
		if next >= len(filled) {
			return nil, &CountMismatchError{Expected: want, Got: len(segments)}
		}
		out[i] = filled[next]
		next++
	}
	if next != len(filled) {
		return nil, &CountMismatchError{Expected: want, Got: len(segments)}
	}
	return out, nil
}
