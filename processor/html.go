package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/linetl"
)

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: linetl.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// parsedHTML holds the parsed document and the unique texts in document order.
type parsedHTML struct {
	doc   *goquery.Document
	texts []string
}

// Extract parses HTML and returns each distinct trimmed text node once.
func (p *HTMLProcessor) Extract(content string) (any, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &linetl.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: ContentHTML,
		}
	}

	var texts []string
	seen := make(map[string]bool)
	p.walk(doc, func(n *html.Node, trimmed string) {
		if !seen[trimmed] {
			seen[trimmed] = true
			texts = append(texts, trimmed)
		}
	})

	return &parsedHTML{doc: doc, texts: texts}, texts, nil
}

// Apply replaces every text node with its translation, keeping its
// surrounding whitespace.
func (p *HTMLProcessor) Apply(parsed any, translated []string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", invalidParsed(ContentHTML)
	}
	if len(translated) != len(ph.texts) {
		return "", countError(ContentHTML, len(ph.texts), len(translated))
	}

	byText := make(map[string]string, len(ph.texts))
	for i, text := range ph.texts {
		byText[text] = translated[i]
	}

	p.walk(ph.doc, func(n *html.Node, trimmed string) {
		if t, ok := byText[trimmed]; ok {
			n.Data = preserveWhitespace(n.Data, t)
		}
	})

	out, err := ph.doc.Html()
	if err != nil {
		return "", &linetl.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: ContentHTML,
		}
	}
	return out, nil
}

// walk visits every non-blank text node outside ignored elements.
func (p *HTMLProcessor) walk(doc *goquery.Document, visit func(n *html.Node, trimmed string)) {
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if p.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
		}

		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				visit(n, trimmed)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}

	for _, n := range doc.Nodes {
		rec(n)
	}
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return ContentHTML
}

// DocumentType returns generic.
func (p *HTMLProcessor) DocumentType() linetl.DocumentType {
	return linetl.DocumentGeneric
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
