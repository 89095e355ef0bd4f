package linetl

import (
	"fmt"
	"strings"
)

// Method identifies a translation provider.
type Method string

const (
	// MethodGTX is the free Google Translate endpoint used by browser extensions.
	MethodGTX Method = "gtxFreeAPI"
	// MethodGoogle is the Google Cloud Translation v2 API.
	MethodGoogle Method = "google"
	// MethodDeepL is the DeepL API (through a configurable proxy URL).
	MethodDeepL Method = "deepl"
	// MethodDeepLX is the free DeepLX endpoint.
	MethodDeepLX Method = "deeplx"
	// MethodAzure is the Azure AI Translator API.
	MethodAzure Method = "azure"

	MethodDeepSeek    Method = "deepseek"
	MethodOpenAI      Method = "openai"
	MethodGemini      Method = "gemini"
	MethodPerplexity  Method = "perplexity"
	MethodAzureOpenAI Method = "azureopenai"
	MethodSiliconFlow Method = "siliconflow"
	MethodGroq        Method = "groq"
	MethodOpenRouter  Method = "openrouter"
	// MethodLLM is any OpenAI-compatible endpoint, e.g. a local Ollama server.
	MethodLLM Method = "llm"
)

// DefaultMethod is the free provider used when a method is unusable.
const DefaultMethod = MethodGTX

// Family groups methods that share retry and batching behavior.
type Family int

const (
	FamilyFree Family = iota
	FamilyTraditional
	FamilyLLM
)

var methodOrder = []Method{
	MethodGTX, MethodGoogle, MethodDeepL, MethodAzure, MethodDeepLX,
	MethodDeepSeek, MethodOpenAI, MethodGemini, MethodPerplexity,
	MethodAzureOpenAI, MethodSiliconFlow, MethodGroq, MethodOpenRouter, MethodLLM,
}

var methodLabels = map[Method]string{
	MethodGTX:         "GTX API (Free)",
	MethodGoogle:      "Google Translate",
	MethodDeepL:       "DeepL",
	MethodAzure:       "Azure Translate",
	MethodDeepLX:      "DeepLX (Free)",
	MethodDeepSeek:    "DeepSeek",
	MethodOpenAI:      "OpenAI",
	MethodGemini:      "Gemini",
	MethodPerplexity:  "Perplexity",
	MethodAzureOpenAI: "Azure OpenAI",
	MethodSiliconFlow: "SiliconFlow",
	MethodGroq:        "Groq",
	MethodOpenRouter:  "OpenRouter",
	MethodLLM:         "Custom LLM",
}

// Methods returns every known method in display order.
func Methods() []Method {
	out := make([]Method, len(methodOrder))
	copy(out, methodOrder)
	return out
}

// ParseMethod resolves a method id. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	for _, m := range methodOrder {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", &ConfigError{Method: Method(s), Message: fmt.Sprintf("Unsupported translation method: %s", s)}
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// Label returns the display name of the method.
func (m Method) Label() string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// Family returns the retry/batching family of the method.
func (m Method) Family() Family {
	switch m {
	case MethodGTX:
		return FamilyFree
	case MethodGoogle, MethodDeepL, MethodDeepLX, MethodAzure:
		return FamilyTraditional
	default:
		return FamilyLLM
	}
}

// IsLLM reports whether the method is a chat-completion model.
func (m Method) IsLLM() bool {
	return m.Valid() && m.Family() == FamilyLLM
}

// DocumentType tunes the context prompt for LLM batch translation.
// The zero value disables context-aware batching.
type DocumentType string

const (
	DocumentSubtitle DocumentType = "subtitle"
	DocumentMarkdown DocumentType = "markdown"
	DocumentGeneric  DocumentType = "generic"
)

// ParseDocumentType resolves a document type name. Empty input yields the zero value.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case DocumentSubtitle:
		return DocumentSubtitle, nil
	case DocumentMarkdown:
		return DocumentMarkdown, nil
	case DocumentGeneric:
		return DocumentGeneric, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Params is one unit of work handed to the dispatcher and to adapters.
type Params struct {
	Text        string
	CacheSuffix string
	Method      Method
	SourceLang  string
	TargetLang  string
	UseCache    bool

	APIKey      string
	Region      string
	URL         string
	Model       string
	APIVersion  string
	Temperature *float64
	SysPrompt   string
	UserPrompt  string
	UseRelay    bool

	// FullText is the whole document, substituted for ${fullText} in prompts.
	FullText string
}

// TemperatureOr returns the configured temperature or def when unset.
func (p Params) TemperatureOr(def float64) float64 {
	if p.Temperature == nil {
		return def
	}
	return *p.Temperature
}

// ProgressFunc receives the number of finished units out of total. Calls
// within a run never overlap and done never decreases.
type ProgressFunc func(done, total int)

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ug": true, // Uyghur
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
