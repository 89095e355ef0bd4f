package linetl

import (
	"strings"
	"testing"
)

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}

	// Whitespace is significant
	if HashText(" Hello World") == HashText("Hello World") {
		t.Error("leading whitespace should change the hash")
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello", "Hello"},
		{"Hello World", "Hello%20World"},
		{"a-b_c.d!e~f*g'h(i)j", "a-b_c.d!e~f*g'h(i)j"},
		{"a/b?c=d&e", "a%2Fb%3Fc%3Dd%26e"},
		{"é", "%C3%A9"},
		{"你好", "%E4%BD%A0%E5%A5%BD"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := encodeURIComponent(tt.input); got != tt.expected {
				t.Errorf("encodeURIComponent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	suffix := "zh_en_deepl"

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"short text is literal", "Hello", "t_Hello_zh_en_deepl"},
		{"spaces are encoded", "Hello World", "t_Hello%20World_zh_en_deepl"},
		{
			"long text is hashed",
			strings.Repeat("a", 33),
			"t_" + HashText(strings.Repeat("a", 33)) + "_zh_en_deepl",
		},
		{
			// 12 CJK characters encode to 108 bytes
			"short but long encoding is hashed",
			"你好世界你好世界你好世界",
			"t_" + HashText("你好世界你好世界你好世界") + "_zh_en_deepl",
		},
		{"32 characters stay literal", strings.Repeat("b", 32), "t_" + strings.Repeat("b", 32) + "_zh_en_deepl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.text, suffix); got != tt.expected {
				t.Errorf("CacheKey(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestCacheKeyPrefix(t *testing.T) {
	for _, text := range []string{"a", strings.Repeat("x", 100), "日本語"} {
		if key := CacheKey(text, "s"); !strings.HasPrefix(key, CachePrefix) {
			t.Errorf("CacheKey(%q) = %q, missing prefix", text, key)
		}
	}
}

func TestCacheSuffix(t *testing.T) {
	t.Run("traditional methods ignore model settings", func(t *testing.T) {
		a := CacheSuffix("en", "zh", MethodDeepL, LLMSettings{Model: "x"})
		b := CacheSuffix("en", "zh", MethodDeepL, LLMSettings{Model: "y"})
		if a != "zh_en_deepl" || a != b {
			t.Errorf("suffixes = %q, %q; want zh_en_deepl", a, b)
		}
	})

	t.Run("LLM suffix fingerprints settings", func(t *testing.T) {
		base := LLMSettings{Model: "deepseek-chat", Temperature: 0.7}
		a := CacheSuffix("auto", "ja", MethodDeepSeek, base)
		if !strings.HasPrefix(a, "ja_auto_deepseek_") {
			t.Fatalf("suffix = %q", a)
		}
		if len(a) != len("ja_auto_deepseek_")+64 {
			t.Errorf("suffix digest length = %d", len(a)-len("ja_auto_deepseek_"))
		}

		warmer := base
		warmer.Temperature = 1
		if CacheSuffix("auto", "ja", MethodDeepSeek, warmer) == a {
			t.Error("temperature should change the suffix")
		}

		otherModel := base
		otherModel.Model = "deepseek-reasoner"
		if CacheSuffix("auto", "ja", MethodDeepSeek, otherModel) == a {
			t.Error("model should change the suffix")
		}
	})

	t.Run("blank prompts equal defaults", func(t *testing.T) {
		blank := LLMSettings{Model: "m", SysPrompt: "  ", UserPrompt: ""}
		explicit := LLMSettings{Model: "m", SysPrompt: DefaultSysPrompt, UserPrompt: DefaultUserPrompt}
		if CacheSuffix("en", "fr", MethodOpenAI, blank) != CacheSuffix("en", "fr", MethodOpenAI, explicit) {
			t.Error("blank prompts should normalize to defaults")
		}
	})
}
