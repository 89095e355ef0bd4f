package linetl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// CachePrefix marks every key written by linetl so a shared store can be cleared safely.
const CachePrefix = "t_"

const (
	maxLiteralKeyChars   = 32
	maxLiteralKeyEncoded = 50
)

// HashText computes the SHA-256 hash of text.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// LLMSettings are the model inputs that change an LLM translation.
type LLMSettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	SysPrompt   string  `json:"sysPrompt"`
	UserPrompt  string  `json:"userPrompt"`
}

// CacheSuffix derives the language/provider part of a cache key.
// LLM methods also fingerprint the model settings, with blank prompts
// replaced by the defaults so both spellings share entries.
func CacheSuffix(sourceLang, targetLang string, m Method, llm LLMSettings) string {
	suffix := targetLang + "_" + sourceLang + "_" + string(m)
	if !m.IsLLM() {
		return suffix
	}

	llm.SysPrompt = EffectivePrompt(llm.SysPrompt, DefaultSysPrompt)
	llm.UserPrompt = EffectivePrompt(llm.UserPrompt, DefaultUserPrompt)
	data, _ := json.Marshal(llm)
	return suffix + "_" + HashText(string(data))
}

// CacheKey builds the key for text under suffix. Short text stays readable
// in the key; anything longer is replaced by its hash.
func CacheKey(text, suffix string) string {
	if utf8.RuneCountInString(text) <= maxLiteralKeyChars {
		if encoded := encodeURIComponent(text); len(encoded) <= maxLiteralKeyEncoded {
			return CachePrefix + encoded + "_" + suffix
		}
	}
	return CachePrefix + HashText(text) + "_" + suffix
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
