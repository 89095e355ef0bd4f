package linetl

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Adapter performs a single translation request against one provider.
// It never retries and never touches the cache.
type Adapter interface {
	Translate(ctx context.Context, p Params) (string, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, p Params) (string, error)

// Translate calls f(ctx, p).
func (f AdapterFunc) Translate(ctx context.Context, p Params) (string, error) {
	return f(ctx, p)
}

// Registry resolves the adapter of a method.
type Registry interface {
	Adapter(m Method) (Adapter, bool)
}

// TranslationCache is the store behind the dispatcher. Backend failures are
// the implementation's concern; reads degrade to misses.
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context) int
	Count(ctx context.Context) int
}

// Dispatcher routes one unit of work through the cache and the provider adapter.
type Dispatcher struct {
	registry Registry
	cache    TranslationCache
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. cache may be nil.
func NewDispatcher(registry Registry, cache TranslationCache, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, cache: cache, logger: logger}
}

// Dispatch translates p.Text. Text without letters, or a run whose source and
// target languages match, is returned as is. Results are cleaned of HTML
// entities and written to the cache whether or not it was read.
func (d *Dispatcher) Dispatch(ctx context.Context, p Params) (string, error) {
	if !HasTranslatableText(p.Text) || p.SourceLang == p.TargetLang {
		return p.Text, nil
	}

	key := CacheKey(p.Text, p.CacheSuffix)
	if p.UseCache && d.cache != nil {
		if cached, ok := d.cache.Get(ctx, key); ok {
			d.logger.Debug("cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	adapter, ok := d.registry.Adapter(p.Method)
	if !ok {
		return "", &ConfigError{Method: p.Method, Message: fmt.Sprintf("Unsupported translation method: %s", p.Method)}
	}

	translated, err := adapter.Translate(ctx, p)
	if err != nil {
		return "", err
	}
	if translated == "" {
		return "", NewProviderError(p.Method, 0, fmt.Sprintf("No translation result received for method: %s", p.Method), nil)
	}

	cleaned := CleanTranslatedText(translated)
	if d.cache != nil {
		d.cache.Set(ctx, key, cleaned)
	}
	return cleaned, nil
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if r := []rune(text); len(r) > 30 {
		return string(r[:30]) + "..."
	}
	return text
}
