package provider

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/linetl"
)

// MockAdapter is a canned adapter for testing.
type MockAdapter struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set

	mu         sync.Mutex
	callCount  int
	lastParams *linetl.Params
}

// NewMockAdapter creates a mock adapter with default translations.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
		},
	}
}

// Translate returns the canned translation, or the text in brackets.
func (m *MockAdapter) Translate(ctx context.Context, p linetl.Params) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastParams = &p
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.Translations[p.Text]; ok {
		return translation, nil
	}
	return "[" + p.Text + "]", nil
}

// CallCount returns the number of Translate calls.
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastParams returns the parameters of the latest call, or nil.
func (m *MockAdapter) LastParams() *linetl.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams
}

// Reset resets the call count and last params.
func (m *MockAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastParams = nil
}

// NewMockRegistry routes every method to a.
func NewMockRegistry(a linetl.Adapter) *Registry {
	adapters := make(map[linetl.Method]linetl.Adapter)
	for _, m := range linetl.Methods() {
		adapters[m] = a
	}
	return &Registry{adapters: adapters}
}

// Verify MockAdapter implements Adapter
var _ linetl.Adapter = (*MockAdapter)(nil)
