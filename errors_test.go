package linetl

import (
	"errors"
	"fmt"
	"testing"
)

func TestTranslationError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TranslationError{Message: "translation failed", Cause: cause}

	if err.Error() != "translation failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without cause
	err2 := &TranslationError{Message: "simple error"}
	if err2.Error() != "simple error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestProviderError(t *testing.T) {
	err := NewProviderError(MethodDeepL, 429, "[429] too many requests", nil)

	if err.Error() != "DeepL error: [429] too many requests" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !err.Retryable {
		t.Error("429 should be retryable")
	}

	anon := &ProviderError{Message: "rate limited"}
	if anon.Error() != "provider error: rate limited" {
		t.Errorf("unexpected error message: %s", anon.Error())
	}
}

func TestNewProviderErrorRetryable(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{0, true},
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := NewProviderError(MethodGTX, tt.status, "x", nil).Retryable; got != tt.expected {
				t.Errorf("Retryable for %d = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("batch: %w", NewProviderError(MethodGroq, 403, "x", nil))
	if got := StatusCode(wrapped); got != 403 {
		t.Errorf("StatusCode = %d, want 403", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode = %d, want 0", got)
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProcessorError(t *testing.T) {
	err := &ProcessorError{Message: "parse failed", ContentType: "srt"}

	if err.Error() != "processor error (srt): parse failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestCountMismatchError(t *testing.T) {
	err := &CountMismatchError{Expected: 5, Got: 3}

	expected := "translation count mismatch: expected 5, got 3"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s, want %s", err.Error(), expected)
	}
}

func TestAbortedError(t *testing.T) {
	cause := NewProviderError(MethodOpenAI, 401, "bad key", nil)
	err := &AbortedError{Cause: cause}

	if !errors.Is(err, ErrAborted) {
		t.Error("AbortedError should match ErrAborted")
	}

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Status != 401 {
		t.Error("AbortedError should unwrap to its cause")
	}

	if (&AbortedError{}).Error() != "translation aborted" {
		t.Errorf("unexpected message: %s", (&AbortedError{}).Error())
	}
}

func TestIncompleteError(t *testing.T) {
	err := &IncompleteError{Line: 3}
	want := "Translation failed: line 3 could not be translated after multiple retries. Please check API settings or retry later."
	if err.Error() != want {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestUnsupportedLanguageError(t *testing.T) {
	err := &UnsupportedLanguageError{Method: MethodDeepLX, Language: "th"}
	want := "DEEPLX doesn't support Thai. Switching to free GTX API now."
	if err.Error() != want {
		t.Errorf("unexpected message: %s, want %s", err.Error(), want)
	}
}
