package linetl

import (
	"reflect"
	"testing"
)

func TestCleanTranslatedText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"It&#39;s", "It's"},
		{"&quot;quoted&quot;", `"quoted"`},
		{"don&apos;t", "don't"},
		{"a &amp; b", "a & b"},
		{"&lt;b&gt;", "<b>"},
		{"&amp;lt;", "<"}, // sequential decoding
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanTranslatedText(tt.input); got != tt.expected {
				t.Errorf("CleanTranslatedText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHasTranslatableText(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Hello", true},
		{"你好", true},
		{"Привет", true},
		{"00:00:01,000 --> 00:00:02,000", false},
		{"42", false},
		{"...!?", false},
		{"", false},
		{"  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := HasTranslatableText(tt.input); got != tt.expected {
				t.Errorf("HasTranslatableText(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\nb\n\nc")
	want := []string{"a", "b", "", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines() = %q, want %q", got, want)
	}
}
