package linetl

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultSysPrompt is the system prompt used when none is configured.
const DefaultSysPrompt = "You are a professional translator. Respond only with the content, either translated or rewritten. Do not add explanations, comments, or any extra text."

// DefaultUserPrompt is the user prompt template used when none is configured.
const DefaultUserPrompt = "Please respect the original meaning, maintain the original format, and rewrite the following content in ${targetLanguage}.\n\n${content}"

// Prompt placeholders.
const (
	PlaceholderContent        = "${content}"
	PlaceholderSourceLanguage = "${sourceLanguage}"
	PlaceholderTargetLanguage = "${targetLanguage}"
	PlaceholderFullText       = "${fullText}"
)

var autoSourcePhrase = regexp.MustCompile(`from \$\{sourceLanguage\} (to|into)`)

// EffectivePrompt returns value unless it is blank, in which case fallback.
func EffectivePrompt(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// UsesFullText reports whether a prompt template asks for the whole document.
func UsesFullText(userPrompt string) bool {
	return strings.Contains(userPrompt, PlaceholderFullText)
}

// BuildPrompt fills a user prompt template. Each placeholder is replaced once.
// With an "auto" source, "from ${sourceLanguage} to" collapses to "into".
// fullText falls back to content when empty.
func BuildPrompt(content, userPrompt, targetLang, sourceLang, fullText string) string {
	prompt := userPrompt
	if sourceLang == "auto" {
		prompt = autoSourcePhrase.ReplaceAllString(prompt, "into")
	}
	prompt = strings.Replace(prompt, PlaceholderSourceLanguage, GetLanguageName(sourceLang), 1)
	prompt = strings.Replace(prompt, PlaceholderTargetLanguage, GetLanguageName(targetLang), 1)
	prompt = strings.Replace(prompt, PlaceholderContent, content, 1)

	if strings.Contains(prompt, PlaceholderFullText) {
		if fullText == "" {
			fullText = content
		}
		prompt = strings.Replace(prompt, PlaceholderFullText, fullText, 1)
	}
	return prompt
}

type documentGuidance struct {
	description string
	style       string
	notes       string
}

var guidance = map[DocumentType]documentGuidance{
	DocumentSubtitle: {
		description: "part of a subtitle file",
		style:       "Maintain the natural flow of dialogue and keep the same numbering in your response.",
		notes:       "If a line contains only sounds/exclamations, still translate them appropriately",
	},
	DocumentMarkdown: {
		description: "part of a Markdown document",
		style:       "Preserve ALL Markdown formatting syntax exactly as-is (**, *, [], (), #, >, -, ```, etc.). Only translate the text content, never modify the Markdown syntax or structure.",
		notes:       "URLs, code blocks, and LaTeX formulas must remain unchanged. Maintain paragraph coherence across lines",
	},
	DocumentGeneric: {
		description: "part of a text document",
		style:       "Maintain consistency, natural language flow, and preserve the original text formatting (line breaks, spacing, punctuation style).",
		notes:       "Keep the original paragraph structure and any special formatting patterns",
	},
}

// BuildContextPrompt injects a marker block and the batch instructions into
// the ${content} slot of baseUserPrompt. Unknown document types use subtitle guidance.
func BuildContextPrompt(block, baseUserPrompt string, batchSize int, docType DocumentType) string {
	g, ok := guidance[docType]
	if !ok {
		g = guidance[DocumentSubtitle]
	}

	content := fmt.Sprintf(`Context: This is %s. Only translate the lines marked with [TRANSLATE_X][/TRANSLATE_X] tags (where X is the line number). Use the [CONTEXT][/CONTEXT] lines for understanding but do not translate them. %s

CRITICAL REQUIREMENTS:
1. You MUST translate ALL %d lines marked with [TRANSLATE_X] tags
2. Do NOT skip any numbers from 0 to %d
3. Keep the exact format: [TRANSLATE_0]translation[/TRANSLATE_0]
4. %s

%s`, g.description, g.style, batchSize, batchSize-1, g.notes, block)

	return strings.Replace(baseUserPrompt, PlaceholderContent, content, 1)
}
