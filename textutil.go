package linetl

import (
	"strings"
	"unicode"
)

// CleanTranslatedText decodes the handful of HTML entities providers leave in
// their output. Replacements run in order, so "&amp;lt;" becomes "<".
func CleanTranslatedText(s string) string {
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&apos;", "'")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	return s
}

// HasTranslatableText reports whether s contains at least one letter.
// Numbers, punctuation and timestamps are passed through untranslated.
func HasTranslatableText(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// SplitLines splits text on "\n", dropping a trailing "\r" from each line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
