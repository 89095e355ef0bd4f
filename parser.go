package linetl

import (
	"fmt"
	"regexp"
	"strings"
)

var markerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[TRANSLATE_\d+\]`),
	regexp.MustCompile(`(?i)\[/TRANSLTranslate_\d+\]`), // common model typo
	regexp.MustCompile(`(?i)\[/TRANSLATE_\d+\]`),
	regexp.MustCompile(`(?i)\[TRANSLATE\]`),
	regexp.MustCompile(`(?i)\[/TRANSLATE\]`),
	regexp.MustCompile(`(?i)\[CONTEXT\]`),
	regexp.MustCompile(`(?i)\[/CONTEXT\]`),
}

var (
	unnumberedPattern = regexp.MustCompile(`(?s)\[TRANSLATE\](.*?)\[/TRANSLATE\]`)
	contextLine       = regexp.MustCompile(`(?i)\[/?CONTEXT\]`)
)

// CleanMarkers strips every batch marker from s and trims the result.
func CleanMarkers(s string) string {
	for _, re := range markerPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// numberedPatterns returns the strict and the typo-tolerant pattern for line i.
func numberedPatterns(i int) [2]*regexp.Regexp {
	return [2]*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`(?is)\[TRANSLATE_%d\](.*?)\[/TRANSLATE_%d\]`, i, i)),
		regexp.MustCompile(fmt.Sprintf(`(?is)\[TRANSLATE_%d\](.*?)\[/TRANSLTranslate_%d\]`, i, i)),
	}
}

// ExtractNumbered recovers n translations from a marked-up model response.
// Slot i holds the text between [TRANSLATE_i] and its closing tag, or "" when
// the model skipped it. If no numbered slot matches at all, it falls back to
// ExtractUnnumbered. The result always has length n.
func ExtractNumbered(response string, n int) []string {
	results := make([]string, n)
	found := 0
	for i := 0; i < n; i++ {
		for _, re := range numberedPatterns(i) {
			if m := re.FindStringSubmatch(response); m != nil {
				results[i] = CleanMarkers(m[1])
				break
			}
		}
		if results[i] != "" {
			found++
		}
	}
	if found > 0 {
		return results
	}
	return ExtractUnnumbered(response, n)
}

// ExtractUnnumbered recovers n translations from [TRANSLATE] blocks, or failing
// that from the first n non-blank response lines. Lines still carrying
// [CONTEXT] markers are never taken as translations. When neither yields
// exactly n items every slot is "".
func ExtractUnnumbered(response string, n int) []string {
	var matches []string
	for _, m := range unnumberedPattern.FindAllStringSubmatch(response, -1) {
		matches = append(matches, CleanMarkers(m[1]))
	}
	if len(matches) == n {
		return matches
	}

	lines := make([]string, 0, n)
	for _, line := range strings.Split(response, "\n") {
		if len(lines) == n {
			break
		}
		if strings.TrimSpace(line) == "" || contextLine.MatchString(line) {
			continue
		}
		lines = append(lines, CleanMarkers(line))
	}
	if len(lines) == n {
		return lines
	}
	return make([]string, n)
}
