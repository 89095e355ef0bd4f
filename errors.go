package linetl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/linetl/i18n"
)

// ErrAborted is matched by every error caused by a cancelled run.
var ErrAborted = errors.New("translation aborted")

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a provider failure (HTTP error, malformed response, etc.).
type ProviderError struct {
	Provider  Method
	Status    int // HTTP status, 0 when the request never got a response
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

// NewProviderError builds a ProviderError whose Retryable flag follows the
// status: network failures, 429 and 5xx are retryable.
func NewProviderError(provider Method, status int, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Status:    status,
		Message:   message,
		Cause:     cause,
		Retryable: status == 0 || status == 429 || status >= 500,
	}
}

func (e *ProviderError) Error() string {
	name := "provider"
	if e.Provider != "" {
		name = e.Provider.Label()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", name, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates missing or invalid configuration. It is never retried.
type ConfigError struct {
	Method  Method
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a document processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates a provider returned a different number of lines than it was sent.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// AbortedError is returned for work refused or cancelled after a run was aborted.
type AbortedError struct {
	Cause error
}

func (e *AbortedError) Error() string {
	if e.Cause != nil && !errors.Is(e.Cause, ErrAborted) {
		return fmt.Sprintf("%v: %v", ErrAborted, e.Cause)
	}
	return ErrAborted.Error()
}

func (e *AbortedError) Unwrap() error {
	return e.Cause
}

func (e *AbortedError) Is(target error) bool {
	return target == ErrAborted
}

// IncompleteError reports the first line (1-based) left untranslated after every fallback.
type IncompleteError struct {
	Line int
}

func (e *IncompleteError) Error() string {
	return i18n.Tf("Translation failed: line %d could not be translated after multiple retries. Please check API settings or retry later.", e.Line)
}

// UnsupportedLanguageError reports a language the chosen method cannot handle.
type UnsupportedLanguageError struct {
	Method   Method
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return i18n.Tf("%s doesn't support %s. Switching to free GTX API now.",
		strings.ToUpper(string(e.Method)), GetLanguageName(e.Language))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return 0
}
